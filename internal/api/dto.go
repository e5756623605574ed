package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mta/internal/domain"
	"mta/internal/models"

	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

// Dates travel as YYYY-MM-DD strings on the wire.

type lineDTO struct {
	ID        int64           `json:"id,omitempty"`
	ItemID    int64           `json:"item_id"`
	ItemName  string          `json:"item_name,omitempty"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type bookingRequestDTO struct {
	CustomerID int64     `json:"customer_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Lines      []lineDTO `json:"lines"`
}

type bookingDTO struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Status       string          `json:"status"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Lines        []lineDTO       `json:"lines"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type customerDTO struct {
	ID         int64      `json:"id,omitempty"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	BirthDate  string     `json:"birth_date,omitempty"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	NationalID string     `json:"national_id"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type availabilityDTO struct {
	ItemID      int64  `json:"item_id"`
	ItemName    string `json:"item_name"`
	Description string `json:"description,omitempty"`
	From        string `json:"from"`
	To          string `json:"to"`
	Total       int64  `json:"total"`
	Committed   int64  `json:"committed"`
	Available   int64  `json:"available"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (d bookingRequestDTO) toRequest() (models.BookingRequest, error) {
	start, err := parseDateField("start_date", d.StartDate)
	if err != nil {
		return models.BookingRequest{}, err
	}
	end, err := parseDateField("end_date", d.EndDate)
	if err != nil {
		return models.BookingRequest{}, err
	}

	req := models.BookingRequest{CustomerID: d.CustomerID, StartDate: start, EndDate: end}
	for _, l := range d.Lines {
		req.Lines = append(req.Lines, models.LineRequest{ItemID: l.ItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return req, nil
}

func toBookingDTO(b *models.BookingWithLines) bookingDTO {
	dto := bookingDTO{
		ID:           b.ID,
		CustomerID:   b.CustomerID,
		CustomerName: b.CustomerName,
		StartDate:    models.FormatDate(b.StartDate),
		EndDate:      models.FormatDate(b.EndDate),
		Status:       b.Status,
		TotalValue:   b.TotalValue,
		Lines:        make([]lineDTO, 0, len(b.Lines)),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	for _, li := range b.Lines {
		dto.Lines = append(dto.Lines, lineDTO{
			ID:        li.ID,
			ItemID:    li.ItemID,
			ItemName:  li.ItemName,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			LineTotal: li.LineTotal,
		})
	}
	return dto
}

func (d customerDTO) toCustomer(id int64) (*models.Customer, error) {
	c := &models.Customer{
		ID:         id,
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		Phone:      d.Phone,
		NationalID: d.NationalID,
	}
	if strings.TrimSpace(d.BirthDate) != "" {
		birth, err := parseDateField("birth_date", d.BirthDate)
		if err != nil {
			return nil, err
		}
		c.BirthDate = &birth
	}
	return c, nil
}

func toCustomerDTO(c *models.Customer) customerDTO {
	dto := customerDTO{
		ID:         c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		NationalID: c.NationalID,
		CreatedAt:  &c.CreatedAt,
		UpdatedAt:  &c.UpdatedAt,
	}
	if c.BirthDate != nil {
		dto.BirthDate = models.FormatDate(*c.BirthDate)
	}
	return dto
}

func toAvailabilityDTO(a *models.Availability) availabilityDTO {
	return availabilityDTO{
		ItemID:      a.ItemID,
		ItemName:    a.ItemName,
		Description: a.Description,
		From:        models.FormatDate(a.From),
		To:          models.FormatDate(a.To),
		Total:       a.Total,
		Committed:   a.Committed,
		Available:   a.Available,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return domain.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

func parseDateField(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.NewValidationError(field, "is required")
	}
	t, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "invalid date format; expected YYYY-MM-DD")
	}
	return t, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// dateRange reads the from/to query parameters.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from, err := parseDateField("from", q.Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDateField("to", q.Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
