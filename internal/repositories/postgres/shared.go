package postgres

import (
	"fmt"
	"strings"

	"github.com/careforms/intake-service/internal/repositories"
	"gorm.io/gorm"
)

// applyPaginationAndSort applies limit/offset and a whitelisted ORDER BY.
// Unknown sort columns fall back to created_at to keep filter input out of
// the SQL.
func applyPaginationAndSort(query *gorm.DB, limit, offset int, sortBy, sortOrder string, allowedSort map[string]bool) *gorm.DB {
	if !allowedSort[sortBy] {
		sortBy = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, order))

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query = query.Limit(limit)
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

type repository struct {
	form        repositories.FormRepository
	session     repositories.SessionRepository
	offering    repositories.OfferingRepository
	appointment repositories.AppointmentRepository
}

// NewRepository wires all postgres-backed repositories over one gorm handle.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		form:        NewFormPostgreSQL(db),
		session:     NewSessionPostgreSQL(db),
		offering:    NewOfferingPostgreSQL(db),
		appointment: NewAppointmentPostgreSQL(db),
	}
}

func (r *repository) Form() repositories.FormRepository               { return r.form }
func (r *repository) Session() repositories.SessionRepository         { return r.session }
func (r *repository) Offering() repositories.OfferingRepository       { return r.offering }
func (r *repository) Appointment() repositories.AppointmentRepository { return r.appointment }
