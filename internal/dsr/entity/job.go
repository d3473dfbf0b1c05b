package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Job status buckets.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Job is a customs clearance job tracked through the daily status report.
// Lifecycle dates are kept as the raw strings received from upstream
// (ISO-8601 or empty); parsing is deliberately lenient and happens only in
// the status package.
type Job struct {
	ID    string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	JobNo string `json:"job_no" gorm:"type:varchar(32);uniqueIndex:idx_jobs_job_no_year;not null"`
	Year  string `json:"year" gorm:"type:varchar(8);uniqueIndex:idx_jobs_job_no_year;index;not null"`

	CustomHouse     string `json:"custom_house" gorm:"type:varchar(64);index"`
	Importer        string `json:"importer" gorm:"type:varchar(256);index"`
	ShippingLine    string `json:"shipping_line_airline" gorm:"type:varchar(128)"`
	AwbBlNo         string `json:"awb_bl_no" gorm:"type:varchar(64)"`
	TypeOfBE        string `json:"type_of_b_e" gorm:"type:varchar(32)"`
	ConsignmentType string `json:"consignment_type" gorm:"type:varchar(32)"`

	VesselBerthing             string `json:"vessel_berthing" gorm:"type:varchar(32)"`
	GatewayIGMDate             string `json:"gateway_igm_date" gorm:"type:varchar(32)"`
	DischargeDate              string `json:"discharge_date" gorm:"type:varchar(32)"`
	OutOfCharge                string `json:"out_of_charge" gorm:"type:varchar(32)"`
	PCVDate                    string `json:"pcv_date" gorm:"type:varchar(32)"`
	BENo                       string `json:"be_no" gorm:"type:varchar(32)"`
	BEDate                     string `json:"be_date" gorm:"type:varchar(32)"`
	CompletedOperationDate     string `json:"completed_operation_date" gorm:"type:varchar(32)"`
	BillDocumentSentToAccounts string `json:"bill_document_sent_to_accounts" gorm:"type:varchar(32)"`

	Status         string `json:"status" gorm:"type:varchar(16);index;default:'Pending'"`
	DetailedStatus string `json:"detailed_status" gorm:"type:varchar(64);index"`

	ContainerNos ContainerList `json:"container_nos" gorm:"type:jsonb"`
	Queries      QueryList     `json:"queries" gorm:"type:jsonb"`
	Documents    DocumentList  `json:"documents" gorm:"type:jsonb"`

	HasUnresolvedQueries bool `json:"has_unresolved_queries" gorm:"index"`

	CreatedBy string    `json:"created_by" gorm:"type:varchar(64)"`
	UpdatedBy string    `json:"updated_by" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

// Container is one container row of a job. Ordering within ContainerNos is
// insertion order and must survive round trips; editors address containers
// by index. The emptyContainerOffLoadDate key is camel-cased upstream.
type Container struct {
	ContainerNumber           string `json:"container_number"`
	Size                      string `json:"size,omitempty"`
	ArrivalDate               string `json:"arrival_date"`
	ContainerRailOutDate      string `json:"container_rail_out_date"`
	DeliveryDate              string `json:"delivery_date"`
	EmptyContainerOffLoadDate string `json:"emptyContainerOffLoadDate"`
	GrossWeight               string `json:"gross_weight,omitempty"`
	TareWeight                string `json:"tare_weight,omitempty"`
	NetWeight                 string `json:"net_weight,omitempty"`
	WeighmentSlipWeight       string `json:"weighment_slip_weight,omitempty"`
}

// JobQuery is a question raised against a job by accounts/documentation.
// A query with an empty reply counts as unresolved.
type JobQuery struct {
	Query     string `json:"query"`
	Reply     string `json:"reply"`
	RaisedBy  string `json:"raised_by,omitempty"`
	RepliedBy string `json:"replied_by,omitempty"`
	RaisedAt  string `json:"raised_at,omitempty"`
	RepliedAt string `json:"replied_at,omitempty"`
}

// Resolved reports whether the query has been answered.
func (q JobQuery) Resolved() bool {
	return q.Reply != ""
}

// Document is an uploaded e-Sanchit style attachment stored in object storage.
type Document struct {
	DocumentName string `json:"document_name"`
	ObjectKey    string `json:"object_key"`
	URL          string `json:"url"`
	UploadedBy   string `json:"uploaded_by,omitempty"`
	UploadedAt   string `json:"uploaded_at,omitempty"`
}

// ContainerList is stored as a jsonb column.
type ContainerList []Container

func (l ContainerList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ContainerList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// QueryList is stored as a jsonb column.
type QueryList []JobQuery

func (l QueryList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *QueryList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Unresolved counts queries without a reply.
func (l QueryList) Unresolved() int {
	n := 0
	for _, q := range l {
		if !q.Resolved() {
			n++
		}
	}
	return n
}

// DocumentList is stored as a jsonb column.
type DocumentList []Document

func (l DocumentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *DocumentList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value interface{}, dst interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}
