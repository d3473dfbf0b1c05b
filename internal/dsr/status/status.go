// Package status derives the detailed lifecycle stage of a clearance job
// from its date and container fields. Everything here is a pure function of
// the job record; callers persist the result on the job so list views can
// filter and group without recomputing.
package status

import (
	"strings"
	"time"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/entity"
)

// Detailed status values, from latest stage to earliest.
const (
	BillingPending           = "Billing Pending"
	CustomClearanceCompleted = "Custom Clearance Completed"
	PCVDoneDutyPending       = "PCV Done, Duty Payment Pending"
	BENotedClearancePending  = "BE Noted, Clearance Pending"
	BENotedArrivalPending    = "BE Noted, Arrival Pending"
	ArrivedBENotePending     = "Arrived, BE Note Pending"
	RailOut                  = "Rail Out"
	Discharged               = "Discharged"
	GatewayIGMFiled          = "Gateway IGM Filed"
	ETADatePending           = "ETA Date Pending"
	EstimatedTimeOfArrival   = "Estimated Time of Arrival"
)

// All lists every detailed status in priority order.
var All = []string{
	BillingPending,
	CustomClearanceCompleted,
	PCVDoneDutyPending,
	BENotedClearancePending,
	BENotedArrivalPending,
	ArrivedBENotePending,
	RailOut,
	Discharged,
	GatewayIGMFiled,
	ETADatePending,
	EstimatedTimeOfArrival,
}

// Valid reports whether s is one of the known detailed status values.
func Valid(s string) bool {
	for _, v := range All {
		if v == s {
			return true
		}
	}
	return false
}

// Compute evaluates the detailed status rules top to bottom and returns the
// first match. The order encodes priority, not chronology: a job that
// satisfies several rules gets the most advanced stage. The function is
// total, every job maps to exactly one value, and never errors; malformed
// dates simply count as unset.
func Compute(job *entity.Job) string {
	anyArrival := false
	allRailOut := len(job.ContainerNos) > 0
	allOffLoad := len(job.ContainerNos) > 0
	allDelivered := len(job.ContainerNos) > 0
	for _, c := range job.ContainerNos {
		if dateSet(c.ArrivalDate) {
			anyArrival = true
		}
		if !dateSet(c.ContainerRailOutDate) {
			allRailOut = false
		}
		if !dateSet(c.EmptyContainerOffLoadDate) {
			allOffLoad = false
		}
		if !dateSet(c.DeliveryDate) {
			allDelivered = false
		}
	}

	beNoted := strings.TrimSpace(job.BENo) != ""
	exBondOrLCL := job.TypeOfBE == "Ex-Bond" || job.ConsignmentType == "LCL"

	// For Ex-Bond and LCL jobs billing waits on delivery, not on empty
	// container off-load.
	billingReady := allOffLoad
	if exBondOrLCL {
		billingReady = allDelivered
	}

	switch {
	case beNoted && anyArrival && dateSet(job.OutOfCharge) && billingReady:
		return BillingPending
	case beNoted && anyArrival && dateSet(job.OutOfCharge):
		return CustomClearanceCompleted
	case beNoted && anyArrival && dateSet(job.PCVDate):
		return PCVDoneDutyPending
	case beNoted && anyArrival:
		return BENotedClearancePending
	case beNoted:
		return BENotedArrivalPending
	case anyArrival:
		return ArrivedBENotePending
	case allRailOut:
		return RailOut
	case dateSet(job.DischargeDate):
		return Discharged
	case dateSet(job.GatewayIGMDate):
		return GatewayIGMFiled
	case !dateSet(job.VesselBerthing):
		return ETADatePending
	default:
		return EstimatedTimeOfArrival
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// dateSet reports whether s holds a parseable date. Unparseable input is
// unset, never an error.
func dateSet(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
