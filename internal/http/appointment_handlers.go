package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nirmitee/clinic-api/internal/domain"
)

type createAppointmentReq struct {
	Title     string    `json:"title" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	StartTime string    `json:"startTime" binding:"required"`
	EndTime   string    `json:"endTime" binding:"required"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var in createAppointmentReq
	if err := c.ShouldBindJSON(&in); err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	authID, _ := authUser(c)
	appt := &domain.Appointment{
		UserID:    authID,
		Title:     in.Title,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	if err := h.Appointments.CreateAppointment(c.Request.Context(), appt); err != nil {
		internalError(c)
		return
	}

	successData(c, appt, CodeSuccess, tr(c, "appointmentCreated"), nil)
}

type updateAppointmentReq struct {
	Title     *string    `json:"title"`
	Date      *time.Time `json:"date"`
	StartTime *string    `json:"startTime"`
	EndTime   *string    `json:"endTime"`
}

// UpdateAppointment patches an appointment inside the caller's role scope: a
// patient can only touch their own records, a doctor any.
func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	var in updateAppointmentReq
	if err := c.ShouldBindJSON(&in); err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	authID, role := authUser(c)
	// Setting _id below would clobber the closed scope an unknown role gets,
	// so reject those before building the filter.
	if !role.Valid() {
		errorNoData(c, tr(c, "appointmentNotFound"), CodeBadRequest, nil)
		return
	}
	filter := domain.ScopeQuery(role, authID)
	filter["_id"] = id

	matched, err := h.Appointments.UpdateAppointment(c.Request.Context(), filter, domain.AppointmentPatch{
		Title:     in.Title,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	})
	if err != nil {
		internalError(c)
		return
	}
	if matched == 0 {
		errorNoData(c, tr(c, "appointmentNotFound"), CodeBadRequest, nil)
		return
	}

	successNoData(c, CodeSuccess, tr(c, "appointmentUpdated"))
}

// GetAppointments lists appointments under the caller's role scope; doctors
// additionally get the owning patient's public fields expanded.
func (h *Handler) GetAppointments(c *gin.Context) {
	authID, role := authUser(c)

	filter := domain.ScopeQuery(role, authID)
	populate := domain.ShouldPopulateRequester(role)

	list, err := h.Appointments.FindAppointments(c.Request.Context(), filter, populate)
	if err != nil {
		internalError(c)
		return
	}

	successData(c, list, CodeSuccess, tr(c, "success"), nil)
}
