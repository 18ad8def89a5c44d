package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/amu-telemed/telemed-backend/models"
)

// Geofilter bounds for booking dispatch, matching the platform contract:
// candidates closer than 5 km, nearest first, at most 10 drivers offered.
const (
	nearbyRadiusKm = 5
	nearbyLimit    = 10
)

// Store is the durable collaborator for the realtime core. It owns every
// query the relays run; the relays never touch SQL directly.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ChatParties returns the patient and doctor of a chat. A missing chat is
// reported as sql.ErrNoRows for the caller to translate.
func (s *Store) ChatParties(ctx context.Context, chatID string) (patientID, doctorID string, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT patient_id, doctor_id FROM chats WHERE id = $1`,
		chatID).Scan(&patientID, &doctorID)
	return patientID, doctorID, err
}

func (s *Store) InsertMessage(ctx context.Context, msg *models.Message) error {
	return s.db.QueryRowContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, content, attachments, message_type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		msg.ChatID, msg.SenderID, msg.Content, pq.Array(msg.Attachments), msg.MessageType,
	).Scan(&msg.ID, &msg.CreatedAt)
}

// TouchChat refreshes the conversation-list ordering watermark.
func (s *Store) TouchChat(ctx context.Context, chatID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chats SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`, chatID)
	return err
}

func (s *Store) UserName(ctx context.Context, userID string) (firstName, lastName string, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT first_name, last_name FROM users WHERE id = $1`,
		userID).Scan(&firstName, &lastName)
	return firstName, lastName, err
}

// MarkMessagesRead flips every unread message from the counterpart in one
// statement and reports how many rows changed.
func (s *Store) MarkMessagesRead(ctx context.Context, chatID, readerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET read_flag = true
		 WHERE chat_id = $1 AND sender_id != $2 AND read_flag = false`,
		chatID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) SetDoctorAvailability(ctx context.Context, doctorID string, isAvailable bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE doctors SET is_available = $2 WHERE user_id = $1`,
		doctorID, isAvailable)
	return err
}

func (s *Store) InsertNotification(ctx context.Context, n models.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, title, message)
		 VALUES ($1, $2, $3, $4)`,
		n.UserID, n.Type, n.Title, n.Message)
	return err
}

// TaxiDriver returns the driver a taxi is registered to.
func (s *Store) TaxiDriver(ctx context.Context, taxiID string) (string, error) {
	var driverID string
	err := s.db.QueryRowContext(ctx,
		`SELECT driver_id FROM taxis WHERE id = $1`, taxiID).Scan(&driverID)
	return driverID, err
}

func (s *Store) UpdateTaxiLocation(ctx context.Context, loc models.TaxiLocation) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE taxis SET current_lat = $1, current_lng = $2, last_location_update = $3
		 WHERE id = $4`,
		loc.Lat, loc.Lng, loc.Timestamp, loc.TaxiID)
	return err
}

// NearbyTaxis geofilters available taxis around a pickup point with the
// haversine formula, nearest first.
func (s *Store) NearbyTaxis(ctx context.Context, pickupLat, pickupLng float64) ([]models.NearbyTaxi, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT * FROM (
			SELECT t.id, t.driver_id, t.vehicle_type, t.plate_number,
			       t.current_lat, t.current_lng,
			       u.first_name, u.last_name,
			       (6371 * acos(cos(radians($1)) * cos(radians(t.current_lat))
			        * cos(radians(t.current_lng) - radians($2)) + sin(radians($1))
			        * sin(radians(t.current_lat)))) AS distance
			FROM taxis t
			JOIN users u ON t.driver_id = u.id
			WHERE t.is_available = true
			AND t.current_lat IS NOT NULL
			AND t.current_lng IS NOT NULL
		) nearby
		WHERE distance < $3
		ORDER BY distance
		LIMIT $4`,
		pickupLat, pickupLng, nearbyRadiusKm, nearbyLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taxis []models.NearbyTaxi
	for rows.Next() {
		var t models.NearbyTaxi
		if err := rows.Scan(&t.TaxiID, &t.DriverID, &t.VehicleType, &t.PlateNumber,
			&t.CurrentLat, &t.CurrentLng, &t.DriverFirstName, &t.DriverLastName, &t.Distance); err != nil {
			return nil, err
		}
		taxis = append(taxis, t)
	}
	return taxis, rows.Err()
}

// CreateBooking inserts the booking and flips the taxi unavailable in a
// single transaction, so a failed flip never leaves an accepted booking
// behind.
func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO bookings (passenger_id, taxi_id, pickup_lat, pickup_lng,
		                       destination_lat, destination_lng, status, estimated_arrival)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		b.PassengerID, b.TaxiID, b.PickupLat, b.PickupLng,
		b.DestinationLat, b.DestinationLng, b.Status, b.EstimatedArrival,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE taxis SET is_available = false WHERE id = $1`, b.TaxiID); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
