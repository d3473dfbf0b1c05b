// Package refdata holds the shared lookup tables that used to be duplicated
// across individual views: shipping line tracking URLs, port codes and
// custom house codes.
package refdata

import "strings"

// trackingURLs maps a shipping line to a BL tracking URL template. %s is
// replaced with the BL number.
var trackingURLs = map[string]string{
	"MSC":           "https://www.msc.com/en/track-a-shipment?trackingNumber=%s",
	"MAERSK":        "https://www.maersk.com/tracking/%s",
	"CMA CGM":       "https://www.cma-cgm.com/ebusiness/tracking/search?SearchBy=BL&Reference=%s",
	"HAPAG-LLOYD":   "https://www.hapag-lloyd.com/en/online-business/track/track-by-booking-solution.html?blno=%s",
	"COSCO":         "https://elines.coscoshipping.com/ebusiness/cargotracking?number=%s",
	"EVERGREEN":     "https://ct.shipmentlink.com/servlet/TDB1_CargoTracking.do?BL=%s",
	"ONE":           "https://ecomm.one-line.com/one-ecom/manage-shipment/cargo-tracking?trakNoParam=%s",
	"OOCL":          "https://www.oocl.com/eng/ourservices/eservices/cargotracking/Pages/cargotracking.aspx?number=%s",
	"HYUNDAI":       "https://www.hmm21.com/e-service/general/trackNTrace/TrackNTrace.do?number=%s",
	"YANG MING":     "https://www.yangming.com/e-service/Track_Trace/track_trace_cargo_tracking.aspx?blno=%s",
	"WAN HAI":       "https://www.wanhai.com/views/cargoTrack/CargoTrack.xhtml?blno=%s",
	"ZIM":           "https://www.zim.com/tools/track-a-shipment?consnumber=%s",
	"PIL":           "https://www.pilship.com/en--/120.html?blno=%s",
	"UNIFEEDER":     "https://www.unifeeder.com/track-trace?bl=%s",
	"TRANSWORLD":    "https://www.transworld.com/track-shipment?bl=%s",
	"GOODRICH":      "https://www.goodrichindia.com/track-and-trace?bl=%s",
	"SEAHORSE":      "https://seahorsegroup.co.in/tracking?bl=%s",
	"ECU WORLDWIDE": "https://ecuworldwide.com/track-trace/?number=%s",
}

// portCodes maps gateway port names to their Indian port codes.
var portCodes = map[string]string{
	"NHAVA SHEVA":   "INNSA1",
	"MUNDRA":        "INMUN1",
	"PIPAVAV":       "INPAV1",
	"HAZIRA":        "INHZA1",
	"CHENNAI":       "INMAA1",
	"ENNORE":        "INENR1",
	"KATTUPALLI":    "INKAT1",
	"COCHIN":        "INCOK1",
	"KOLKATA":       "INCCU1",
	"TUTICORIN":     "INTUT1",
	"VISAKHAPATNAM": "INVTZ1",
	"KANDLA":        "INIXY1",
}

// customHouseCodes maps custom house display names to location codes used on
// bills of entry.
var customHouseCodes = map[string]string{
	"ICD SANAND":    "INSAU6",
	"ICD KHODIYAR":  "INSBI6",
	"ICD SACHANA":   "INJKA6",
	"ICD VARNAMA":   "INBRC6",
	"ICD TUMB":      "INTMB6",
	"HAZIRA":        "INHZA1",
	"MUNDRA":        "INMUN1",
	"AIR AHMEDABAD": "INAMD4",
}

// ResolveTrackingURL returns a tracking URL for the given shipping line and
// BL number. Lookup is case-insensitive on the line name; unknown lines
// return ok=false so callers can fall back to showing the bare BL number.
func ResolveTrackingURL(line, blNumber string) (string, bool) {
	tmpl, ok := trackingURLs[normalize(line)]
	if !ok || blNumber == "" {
		return "", false
	}
	return strings.Replace(tmpl, "%s", blNumber, 1), true
}

// ResolvePortCode returns the port code for a gateway port name.
func ResolvePortCode(name string) (string, bool) {
	code, ok := portCodes[normalize(name)]
	return code, ok
}

// ResolveCustomHouseCode returns the location code for a custom house name.
func ResolveCustomHouseCode(name string) (string, bool) {
	code, ok := customHouseCodes[normalize(name)]
	return code, ok
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
