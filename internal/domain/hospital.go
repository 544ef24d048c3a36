package domain

import (
	"database/sql"
)

// Hospital 医院领域模型（对应 hospitals 表）
// Read-only from this service's API surface.
type Hospital struct {
	ID                 string          `db:"id"`
	Name               string          `db:"name"`
	Address            string          `db:"address"`
	City               string          `db:"city"`
	Phone              sql.NullString  `db:"phone"`
	Email              sql.NullString  `db:"email"`
	Latitude           sql.NullFloat64 `db:"latitude"`
	Longitude          sql.NullFloat64 `db:"longitude"`
	ImageURL           sql.NullString  `db:"image_url"`
	Rating             sql.NullFloat64 `db:"rating"`
	EmergencyAvailable bool            `db:"emergency_available"`
}

// BedType 床型字典（对应 bed_types 表）：ICU / General / Pediatric ...
type BedType struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// HospitalBedRecord 每院每床型的库存行（对应 hospital_beds 表）
// Invariant enforced by the writer: 0 <= AvailableBeds <= TotalBeds.
// One record is the unit of update; there is no bulk write.
type HospitalBedRecord struct {
	ID            string `db:"id"`
	HospitalID    string `db:"hospital_id"`
	BedTypeName   string `db:"bed_type_name"` // joined from bed_types
	TotalBeds     int    `db:"total_beds"`
	AvailableBeds int    `db:"available_beds"`
}
