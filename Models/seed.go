package Models

import (
	"fmt"
	"time"
)

// generateUnits builds a numbered range of units sharing a prefix and model.
// Numbers below 10 are zero padded to match the fleet's labeling scheme.
func generateUnits(prefix string, start, end int, unitType UnitType, model string) []Unit {
	var units []Unit
	for i := start; i <= end; i++ {
		id := fmt.Sprintf("%s%02d", prefix, i)
		units = append(units, Unit{
			ID:     id,
			Name:   id,
			Type:   unitType,
			Model:  model,
			Status: UnitActive,
		})
	}
	return units
}

func unit(id string, unitType UnitType, model string, status UnitStatus) Unit {
	return Unit{ID: id, Name: id, Type: unitType, Model: model, Status: status}
}

// DefaultFleet returns the seed fleet used whenever a store is empty. The
// list mirrors the physical fleet inventory sheet.
func DefaultFleet() []Unit {
	var units []Unit

	// GST 01 series (studio trailers)
	units = append(units, unit("GST 01-01", UnitTrailer, "Studio Trailer", UnitNeedsRepair)) // Broken tank
	units = append(units, generateUnits("GST 01-", 2, 9, UnitTrailer, "Studio Trailer")...)
	units = append(units, unit("GST 01-10", UnitTrailer, "Studio Trailer", UnitNeedsRepair))
	units = append(units, generateUnits("GST 01-", 11, 13, UnitTrailer, "Studio Trailer")...)

	// GST 02 series
	units = append(units, generateUnits("GST 02-", 1, 27, UnitTrailer, "Studio Trailer")...)
	units = append(units, unit("GST 02-28", UnitTrailer, "Studio Trailer", UnitOutOfService))
	units = append(units, generateUnits("GST 02-", 29, 36, UnitTrailer, "Studio Trailer")...)

	// GST 03 series
	units = append(units, generateUnits("GST 03-", 1, 39, UnitTrailer, "Studio Trailer")...)

	// GST 05 series (5th wheel)
	units = append(units, generateUnits("GST 05-", 1, 5, UnitTrailer, "5th Wheel Trailer")...)

	// GHM station HMUs
	units = append(units, unit("GHM 08-01", UnitTrailer, "Station HMU", UnitActive))
	units = append(units, unit("GHM 08-02", UnitTrailer, "Station HMU", UnitNeedsRepair)) // Floor damage
	units = append(units, generateUnits("GHM 08-", 3, 10, UnitTrailer, "Station HMU")...)
	units = append(units, unit("GHM 09-01", UnitTrailer, "Station HMU", UnitActive))
	units = append(units, generateUnits("GHM 10-", 1, 12, UnitTrailer, "Station HMU")...)

	// Day cabs
	units = append(units, unit("GDC 01", UnitTruck, "3 Axle Day Cab", UnitActive))
	units = append(units, unit("GDC 02", UnitTruck, "3 Axle Day Cab", UnitActive))
	units = append(units, unit("GDC 03", UnitTruck, "3 Axle Day Cab", UnitOutOfService))
	units = append(units, generateUnits("GDC ", 4, 16, UnitTruck, "3 Axle Day Cab")...)
	units = append(units, unit("DC 582", UnitTruck, "5th Wheel Day Cab", UnitActive))
	units = append(units, unit("WDC 04", UnitTruck, "Day Cab", UnitActive))

	// Sleeper tractors
	units = append(units, unit("GSC 01", UnitTruck, "Sleeper Tractor", UnitActive))
	units = append(units, unit("GSC 02", UnitTruck, "Sleeper Tractor", UnitActive))

	// Stakebeds
	units = append(units, generateUnits("GLSB 12-", 1, 2, UnitTruck, "12' Stakebed")...)
	units = append(units, unit("GLSB 12-03", UnitTruck, "12' Stakebed", UnitOutOfService)) // Missing
	units = append(units, generateUnits("GLSB 12-", 4, 13, UnitTruck, "12' Stakebed")...)
	units = append(units, unit("GLSB 12-501", UnitTruck, "12' Stakebed", UnitActive))

	// Honeywagons
	units = append(units, generateUnits("GHW ", 1, 9, UnitTrailer, "Honeywagon")...)

	// Semi wardrobes
	units = append(units, generateUnits("GWT ", 1, 7, UnitTrailer, "Semi Wardrobe")...)

	// Shorty forties
	units = append(units, generateUnits("GSV ", 1, 18, UnitTruck, "Shorty Forty")...)
	units = append(units, unit("GSV 19", UnitTruck, "Shorty Forty", UnitNeedsRepair)) // Wiring issues
	units = append(units, generateUnits("GSV ", 20, 22, UnitTruck, "Shorty Forty")...)
	units = append(units, unit("SV 183 BI", UnitTruck, "Shorty Forty", UnitActive))

	// Camera trucks
	units = append(units, generateUnits("GCT ", 1, 5, UnitTruck, "30' Camera Truck")...)

	// Crew cabs
	units = append(units, unit("GSD 01", UnitTruck, "26' Crew Cab", UnitNeedsRepair))
	units = append(units, generateUnits("GSD ", 2, 9, UnitTruck, "26' Crew Cab")...)
	units = append(units, generateUnits("GGT ", 1, 4, UnitTruck, "30' Crew Cab Box")...)

	// Production vans
	units = append(units, unit("GPV 01", UnitTruck, "Production Van", UnitActive))
	units = append(units, unit("GPV 02", UnitTruck, "Production Van", UnitActive))

	// Misc
	units = append(units, unit("G OT 101", UnitTrailer, "One Ton", UnitActive))
	units = append(units, unit("G OT 102", UnitTrailer, "One Ton", UnitActive))
	units = append(units, unit("G-EPS 01", UnitTrailer, "Generator", UnitActive))
	units = append(units, unit("GSR 01", UnitTruck, "Specialty", UnitNeedsRepair))

	return units
}

// InitialReports returns the starter damage reports matching the seeded
// NEEDS_REPAIR / OUT_OF_SERVICE units.
func InitialReports() []DamageReport {
	now := time.Now()
	daysAgo := func(d int) time.Time { return now.Add(-time.Duration(d) * 24 * time.Hour) }

	return []DamageReport{
		{
			ID:             "RPT-2024-001",
			UnitID:         "GST 01-01",
			Timestamp:      daysAgo(5),
			Description:    "Tank is broken/damaged. Leaking fluids.",
			ReportedBy:     "Inspection Team",
			Priority:       PriorityHigh,
			Images:         JSONStrings(nil),
			Status:         StatusOpen,
			SuggestedParts: JSONStrings([]string{"Fuel Tank", "Mounting Straps"}),
		},
		{
			ID:             "RPT-2024-002",
			UnitID:         "GHM 08-02",
			Timestamp:      daysAgo(10),
			Description:    "Floor damage detected in main cabin area.",
			ReportedBy:     "Cleaning Crew",
			Priority:       PriorityMedium,
			Images:         JSONStrings(nil),
			Status:         StatusOpen,
			SuggestedParts: JSONStrings([]string{"Flooring Panels", "Adhesive"}),
		},
		{
			ID:             "RPT-2024-003",
			UnitID:         "GSV 19",
			Timestamp:      daysAgo(2),
			Description:    "Wiring issues causing intermittent lighting failure.",
			ReportedBy:     "Driver",
			Priority:       PriorityHigh,
			Images:         JSONStrings(nil),
			Status:         StatusInProgress,
			SuggestedParts: JSONStrings([]string{"Wiring Harness", "Fuses"}),
		},
		{
			ID:             "RPT-2024-004",
			UnitID:         "GDC 03",
			Timestamp:      daysAgo(20),
			Description:    "Unit marked Out of Service. Major engine failure.",
			ReportedBy:     "Shop Foreman",
			Priority:       PriorityCritical,
			Images:         JSONStrings(nil),
			Status:         StatusOpen,
			SuggestedParts: JSONStrings([]string{"Engine Block", "Pistons"}),
		},
	}
}
