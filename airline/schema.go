// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package airline

import "database/sql"

// schema is the normalized airline reference dataset. Temporal tables
// (Flight_Instance, Leg_Instance, Flight_Crew, Seats) use composite primary
// keys that include the flight date.
const schema = `
CREATE TABLE IF NOT EXISTS Airplane_Type (
	Type_Name TEXT PRIMARY KEY,
	Max_Seats INTEGER NOT NULL,
	Company TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Airports (
	Airport_Code TEXT PRIMARY KEY,
	Name TEXT NOT NULL,
	City TEXT NOT NULL,
	State TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Flights (
	Flight_ID TEXT PRIMARY KEY,
	Airline TEXT NOT NULL,
	Weekdays TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Planned_Legs (
	Flight_ID TEXT NOT NULL REFERENCES Flights(Flight_ID),
	Leg_Number INTEGER NOT NULL,
	Departure_Airport_Code TEXT NOT NULL REFERENCES Airports(Airport_Code),
	Scheduled_Departure_Time TEXT NOT NULL,
	Arrival_Airport_Code TEXT NOT NULL REFERENCES Airports(Airport_Code),
	Scheduled_Arrival_Time TEXT NOT NULL,
	PRIMARY KEY (Flight_ID, Leg_Number)
);

CREATE TABLE IF NOT EXISTS Flight_Instance (
	Flight_ID TEXT NOT NULL REFERENCES Flights(Flight_ID),
	Flight_Date TEXT NOT NULL,
	Airplane_Type TEXT NOT NULL REFERENCES Airplane_Type(Type_Name),
	Total_Seats INTEGER NOT NULL,
	Booked_Seats INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (Flight_ID, Flight_Date)
);

CREATE TABLE IF NOT EXISTS Leg_Instance (
	Flight_ID TEXT NOT NULL,
	Leg_Number INTEGER NOT NULL,
	Flight_Date TEXT NOT NULL,
	Departure_Airport_Code TEXT NOT NULL REFERENCES Airports(Airport_Code),
	Departure_Time TEXT,
	Arrival_Airport_Code TEXT NOT NULL REFERENCES Airports(Airport_Code),
	Arrival_Time TEXT,
	PRIMARY KEY (Flight_ID, Leg_Number, Flight_Date),
	FOREIGN KEY (Flight_ID, Leg_Number) REFERENCES Planned_Legs(Flight_ID, Leg_Number),
	FOREIGN KEY (Flight_ID, Flight_Date) REFERENCES Flight_Instance(Flight_ID, Flight_Date)
);

CREATE TABLE IF NOT EXISTS Employees (
	Employee_ID TEXT PRIMARY KEY,
	Name TEXT NOT NULL,
	Salary INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS Flight_Crew (
	Flight_ID TEXT NOT NULL,
	Flight_Date TEXT NOT NULL,
	Employee_ID TEXT NOT NULL REFERENCES Employees(Employee_ID),
	Role TEXT NOT NULL,
	PRIMARY KEY (Flight_ID, Flight_Date, Employee_ID),
	FOREIGN KEY (Flight_ID, Flight_Date) REFERENCES Flight_Instance(Flight_ID, Flight_Date)
);

CREATE TABLE IF NOT EXISTS Ground_Staff (
	Employee_ID TEXT NOT NULL REFERENCES Employees(Employee_ID),
	Airport_Code TEXT NOT NULL REFERENCES Airports(Airport_Code),
	Shift TEXT NOT NULL,
	PRIMARY KEY (Employee_ID, Airport_Code)
);

CREATE TABLE IF NOT EXISTS Passengers (
	Passenger_ID TEXT PRIMARY KEY,
	Name TEXT NOT NULL,
	Phone TEXT
);

CREATE TABLE IF NOT EXISTS Baggage (
	Baggage_ID TEXT PRIMARY KEY,
	Passenger_ID TEXT NOT NULL REFERENCES Passengers(Passenger_ID),
	Flight_ID TEXT NOT NULL,
	Flight_Date TEXT NOT NULL,
	Weight_KG REAL NOT NULL,
	FOREIGN KEY (Flight_ID, Flight_Date) REFERENCES Flight_Instance(Flight_ID, Flight_Date)
);

CREATE TABLE IF NOT EXISTS Fare_Info (
	Fare_Code TEXT PRIMARY KEY,
	Description TEXT NOT NULL,
	Restrictions TEXT
);

CREATE TABLE IF NOT EXISTS Flight_Fare (
	Flight_ID TEXT NOT NULL REFERENCES Flights(Flight_ID),
	Fare_Code TEXT NOT NULL REFERENCES Fare_Info(Fare_Code),
	Amount REAL NOT NULL,
	PRIMARY KEY (Flight_ID, Fare_Code)
);

CREATE TABLE IF NOT EXISTS Seats (
	Flight_ID TEXT NOT NULL,
	Flight_Date TEXT NOT NULL,
	Seat_Number TEXT NOT NULL,
	Passenger_ID TEXT REFERENCES Passengers(Passenger_ID),
	PRIMARY KEY (Flight_ID, Flight_Date, Seat_Number),
	FOREIGN KEY (Flight_ID, Flight_Date) REFERENCES Flight_Instance(Flight_ID, Flight_Date)
);

CREATE TABLE IF NOT EXISTS Layovers (
	Flight_ID TEXT NOT NULL REFERENCES Flights(Flight_ID),
	Airport_Code TEXT NOT NULL REFERENCES Airports(Airport_Code),
	Arrival_Time TEXT NOT NULL,
	Departure_Time TEXT NOT NULL,
	PRIMARY KEY (Flight_ID, Airport_Code)
);
`

// DDL returns the schema text so tooling can print or inspect it
func DDL() string {
	return schema
}

// CreateSchema creates all airline tables if they don't exist
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
