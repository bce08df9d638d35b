package cleaner

import (
	"github.com/David-Botos/food-inspections/pkg/model"
)

func fixtureInspections() *model.Table {
	return model.NewTable("inspections",
		[]string{
			model.ColOwnerID, model.ColOwnerName, model.ColFacilityID, model.ColSerialNumber,
			model.ColZipCode, model.ColProgramStatus, model.ColDescription, model.ColScore,
			model.ColActivityDate, model.ColLocation,
		},
		model.Row{
			model.ColOwnerID: "OW1", model.ColOwnerName: "Owner One", model.ColFacilityID: "FA1",
			model.ColSerialNumber: "S1", model.ColZipCode: "90001", model.ColProgramStatus: "ACTIVE",
			model.ColDescription: "RESTAURANT (0-30) SEATS", model.ColScore: "92",
			model.ColActivityDate: "2019-05-01", model.ColLocation: "(34.0, -118.2)",
		},
		model.Row{
			model.ColOwnerID: "OW2", model.ColOwnerName: "Owner Two", model.ColFacilityID: "FA2",
			model.ColSerialNumber: "S2", model.ColZipCode: "90001", model.ColProgramStatus: "INACTIVE",
			model.ColDescription: "RESTAURANT (31-60) SEATS", model.ColScore: "85",
			model.ColActivityDate: "2019-06-01", model.ColLocation: "(34.1, -118.3)",
		},
		model.Row{
			model.ColOwnerID: "OW3", model.ColOwnerName: "Owner Three", model.ColFacilityID: "FA3",
			model.ColSerialNumber: "S3", model.ColZipCode: "90002", model.ColProgramStatus: "ACTIVE",
			model.ColDescription: "FOOD MKT RETAIL (25-1,999 SF)", model.ColScore: "95",
			model.ColActivityDate: "2020-01-15", model.ColLocation: "(34.2, -118.4)",
		},
		model.Row{
			model.ColOwnerID: "OW2", model.ColOwnerName: "Owner Two", model.ColFacilityID: "FA2",
			model.ColSerialNumber: "S4", model.ColZipCode: "90003", model.ColProgramStatus: "INACTIVE",
			model.ColDescription: "RESTAURANT (31-60) SEATS", model.ColScore: "80",
			model.ColActivityDate: "2020-02-01", model.ColLocation: "(34.1, -118.3)",
		},
	)
}

func fixtureViolations() *model.Table {
	return model.NewTable("violations",
		[]string{model.ColZipCode, model.ColViolationCode},
		model.Row{model.ColZipCode: "90001", model.ColViolationCode: "F023"},
		model.Row{model.ColZipCode: "90002", model.ColViolationCode: "F044"},
		model.Row{model.ColZipCode: "99999", model.ColViolationCode: "F007"},
		model.Row{model.ColZipCode: "90003", model.ColViolationCode: "F023"},
	)
}

func fixtureInventory() *model.Table {
	return model.NewTable("inventory",
		[]string{model.ColFacilityID, model.ColDescription},
		model.Row{model.ColFacilityID: "FA1", model.ColDescription: "RESTAURANT (0-30) SEATS"},
		model.Row{model.ColFacilityID: "FA2", model.ColDescription: "RESTAURANT (31-60) SEATS"},
		model.Row{model.ColFacilityID: "FA2", model.ColDescription: "RESTAURANT (31-60) SEATS"},
		model.Row{model.ColFacilityID: "FA3", model.ColDescription: "[NEW] FOOD MKT RETAIL (25-1,999 SF)"},
	)
}

func serials(t *model.Table) []interface{} {
	return t.Values(model.ColSerialNumber)
}
