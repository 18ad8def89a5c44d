package models

import "time"

type Taxi struct {
	ID          string     `json:"id"`
	DriverID    string     `json:"driver_id"`
	VehicleType string     `json:"vehicle_type"`
	PlateNumber string     `json:"plate_number"`
	CurrentLat  *float64   `json:"current_lat"`
	CurrentLng  *float64   `json:"current_lng"`
	IsAvailable bool       `json:"is_available"`
	LastUpdate  *time.Time `json:"last_location_update"`
}

// NearbyTaxi is a geofilter candidate: a taxi row with the driver's name and
// the great-circle distance (km) to the pickup point.
type NearbyTaxi struct {
	TaxiID          string  `json:"taxi_id"`
	DriverID        string  `json:"driver_id"`
	VehicleType     string  `json:"vehicle_type"`
	PlateNumber     string  `json:"plate_number"`
	CurrentLat      float64 `json:"current_lat"`
	CurrentLng      float64 `json:"current_lng"`
	DriverFirstName string  `json:"first_name"`
	DriverLastName  string  `json:"last_name"`
	Distance        float64 `json:"distance"`
}

type Booking struct {
	ID               string    `json:"id"`
	PassengerID      string    `json:"passenger_id"`
	TaxiID           string    `json:"taxi_id"`
	PickupLat        float64   `json:"pickup_lat"`
	PickupLng        float64   `json:"pickup_lng"`
	DestinationLat   float64   `json:"destination_lat"`
	DestinationLng   float64   `json:"destination_lng"`
	Status           string    `json:"status"`
	EstimatedArrival string    `json:"estimated_arrival"`
	CreatedAt        time.Time `json:"created_at"`
}

// TaxiLocation is one append-only position tick, archived in Mongo.
type TaxiLocation struct {
	TaxiID    string    `bson:"taxiId" json:"taxi_id"`
	Lat       float64   `bson:"lat" json:"lat"`
	Lng       float64   `bson:"lng" json:"lng"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
