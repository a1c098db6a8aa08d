// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package airline

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db
}

func TestCreateSchema(t *testing.T) {
	db := setupDB(t)

	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
	`).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count tables: %v", err)
	}

	if count != 15 {
		t.Errorf("Expected 15 tables, got %d", count)
	}

	// Idempotent thanks to IF NOT EXISTS
	if err := CreateSchema(db); err != nil {
		t.Errorf("Second CreateSchema failed: %v", err)
	}
}

func TestCompositePrimaryKeys(t *testing.T) {
	db := setupDB(t)

	mustExec := func(query string, args ...interface{}) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatalf("Exec failed: %v", err)
		}
	}

	mustExec(`INSERT INTO Airplane_Type (Type_Name, Max_Seats, Company) VALUES ('B737', 180, 'Boeing')`)
	mustExec(`INSERT INTO Flights (Flight_ID, Airline, Weekdays) VALUES ('SC101', 'Scaper Air', 'MTWTF--')`)
	mustExec(`INSERT INTO Flight_Instance (Flight_ID, Flight_Date, Airplane_Type, Total_Seats) VALUES ('SC101', '2025-06-01', 'B737', 180)`)

	// Same flight on another date is fine
	mustExec(`INSERT INTO Flight_Instance (Flight_ID, Flight_Date, Airplane_Type, Total_Seats) VALUES ('SC101', '2025-06-02', 'B737', 180)`)

	// Same (Flight_ID, Flight_Date) must be rejected
	_, err := db.Exec(`INSERT INTO Flight_Instance (Flight_ID, Flight_Date, Airplane_Type, Total_Seats) VALUES ('SC101', '2025-06-01', 'B737', 180)`)
	if err == nil {
		t.Error("Expected duplicate (Flight_ID, Flight_Date) to be rejected")
	}
}

func TestSeatAssignment(t *testing.T) {
	db := setupDB(t)

	seed := []string{
		`INSERT INTO Airplane_Type (Type_Name, Max_Seats, Company) VALUES ('A320', 150, 'Airbus')`,
		`INSERT INTO Flights (Flight_ID, Airline, Weekdays) VALUES ('SC200', 'Scaper Air', '-----SS')`,
		`INSERT INTO Flight_Instance (Flight_ID, Flight_Date, Airplane_Type, Total_Seats) VALUES ('SC200', '2025-07-04', 'A320', 150)`,
		`INSERT INTO Passengers (Passenger_ID, Name, Phone) VALUES ('P1', 'Ada', NULL)`,
		`INSERT INTO Seats (Flight_ID, Flight_Date, Seat_Number, Passenger_ID) VALUES ('SC200', '2025-07-04', '12A', 'P1')`,
	}
	for _, q := range seed {
		if _, err := db.Exec(q); err != nil {
			t.Fatalf("Seed failed: %v", err)
		}
	}

	// A seat can only be assigned once per flight instance
	_, err := db.Exec(`INSERT INTO Seats (Flight_ID, Flight_Date, Seat_Number) VALUES ('SC200', '2025-07-04', '12A')`)
	if err == nil {
		t.Error("Expected duplicate seat on same instance to be rejected")
	}

	// The same seat on a different date is a different row
	if _, err := db.Exec(`INSERT INTO Flight_Instance (Flight_ID, Flight_Date, Airplane_Type, Total_Seats) VALUES ('SC200', '2025-07-05', 'A320', 150)`); err != nil {
		t.Fatalf("Failed to insert second instance: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO Seats (Flight_ID, Flight_Date, Seat_Number) VALUES ('SC200', '2025-07-05', '12A')`); err != nil {
		t.Errorf("Seat on different date should be allowed: %v", err)
	}
}

func TestDDLAccessor(t *testing.T) {
	if DDL() == "" {
		t.Error("DDL should not be empty")
	}
}
