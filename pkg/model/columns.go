// pkg/model/columns.go
package model

// Column names used by the inspection datasets. Names are case- and spelling-exact.
const (
	ColOwnerID         = "OWNER ID"
	ColOwnerName       = "OWNER NAME"
	ColFacilityName    = "FACILITY NAME"
	ColRecordID        = "RECORD ID"
	ColProgramName     = "PROGRAM NAME"
	ColProgramElement  = "PROGRAM ELEMENT (PE)"
	ColFacilityAddress = "FACILITY ADDRESS"
	ColFacilityCity    = "FACILITY CITY"
	ColFacilityState   = "FACILITY STATE"
	ColCensusTracts    = "Census Tracts 2010"
	ColLocation        = "Location"
	ColSupervisorial   = "2011 Supervisorial District Boundaries (Official)"
	ColStatisticalArea = "Board Approved Statistical Areas"

	ColFacilityID    = "FACILITY ID"
	ColSerialNumber  = "SERIAL NUMBER"
	ColZipCode       = "Zip Codes"
	ColProgramStatus = "PROGRAM STATUS"
	ColDescription   = "PE DESCRIPTION"
	ColScore         = "SCORE"
	ColActivityDate  = "ACTIVITY DATE"
	ColViolationCode = "VIOLATION CODE"

	// ColSeatNumbers is derived from ColDescription during cleaning
	ColSeatNumbers = "SEAT NUMBERS"
	// ColIndex holds the original row position of a violation once exposed for the join
	ColIndex = "index"
)

// StatusActive is the only program status kept by cleaning
const StatusActive = "ACTIVE"

// AdministrativeColumns returns the fixed set of columns pruned from inspections.
// Any other column is retained even if it looks administrative.
func AdministrativeColumns() []string {
	return []string{
		ColOwnerID,
		ColOwnerName,
		ColFacilityName,
		ColRecordID,
		ColProgramName,
		ColProgramElement,
		ColFacilityAddress,
		ColFacilityCity,
		ColFacilityState,
		ColCensusTracts,
		ColLocation,
		ColSupervisorial,
		ColStatisticalArea,
	}
}
