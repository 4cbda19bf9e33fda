package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/services"
	"github.com/dmitrijs2005/giveaway/internal/timex"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type prizeRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	SeniorityIndex *int   `json:"seniorityIndex"`
}

type createEventRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	StartDate   string         `json:"startDate" binding:"required"`
	EndDate     string         `json:"endDate" binding:"required"`
	Prizes      []prizeRequest `json:"prizes" binding:"dive"`
}

type prizeResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	SeniorityIndex int     `json:"seniorityIndex"`
	HasImage       bool    `json:"hasImage"`
}

type eventResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	Prizes      []prizeResponse `json:"prizes,omitempty"`
}

type imageUploadRequest struct {
	ContentType string `json:"contentType"`
}

type generateQRRequest struct {
	Count     int    `json:"count" binding:"required,min=1,max=1000"`
	ExpiresAt string `json:"expiresAt"`
}

type qrCodeResponse struct {
	Token     string     `json:"token"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Used      bool       `json:"used"`
}

type entryResponse struct {
	EntryCode      string    `json:"entryCode"`
	EventID        string    `json:"eventId"`
	Name           string    `json:"name"`
	Email          *string   `json:"email,omitempty"`
	WhatsAppNumber string    `json:"whatsappNumber"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	Pincode        string    `json:"pincode"`
	PrizeID        *string   `json:"prizeId,omitempty"`
	IPAddress      string    `json:"ipAddress"`
	CreatedAt      time.Time `json:"createdAt"`
}

type winnerResponse struct {
	entryResponse
	PrizeName      string `json:"prizeName"`
	SeniorityIndex int    `json:"seniorityIndex"`
}

type attemptResponse struct {
	ID            int64     `json:"id"`
	IPAddress     string    `json:"ipAddress"`
	UserAgent     string    `json:"userAgent"`
	Type          string    `json:"type"`
	QRToken       *string   `json:"qrToken,omitempty"`
	Success       bool      `json:"success"`
	FailureReason *string   `json:"failureReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type sendMessageRequest struct {
	EntryID *string `json:"entryId"`
	To      string  `json:"to" binding:"required"`
	Body    string  `json:"body" binding:"required"`
}

type messageResponse struct {
	ID        int64     `json:"id"`
	EntryID   *string   `json:"entryId,omitempty"`
	Recipient string    `json:"recipient"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toEventResponse(d *services.EventDetails) eventResponse {
	r := eventResponse{
		ID:          d.Event.ID,
		Name:        d.Event.Name,
		Description: d.Event.Description,
		StartDate:   d.Event.StartDate.Format(time.DateOnly),
		EndDate:     d.Event.EndDate.Format(time.DateOnly),
		Status:      string(d.Status),
		CreatedAt:   d.Event.CreatedAt,
	}
	for _, p := range d.Prizes {
		r.Prizes = append(r.Prizes, prizeResponse{
			ID:             p.ID,
			Name:           p.Name,
			Description:    p.Description,
			SeniorityIndex: p.SeniorityIndex,
			HasImage:       p.ImageKey != nil,
		})
	}
	return r
}

func toEntryResponse(e *models.Entry) entryResponse {
	return entryResponse{
		EntryCode:      e.ID,
		EventID:        e.EventID,
		Name:           e.Name,
		Email:          e.Email,
		WhatsAppNumber: e.WhatsAppNumber,
		Address:        e.Address,
		City:           e.City,
		Pincode:        e.Pincode,
		PrizeID:        e.PrizeID,
		IPAddress:      e.IPAddress,
		CreatedAt:      e.CreatedAt,
	}
}

func toMessageResponse(m *models.MessageLog) messageResponse {
	return messageResponse{
		ID:        m.ID,
		EntryID:   m.EntryID,
		Recipient: m.Recipient,
		Body:      m.Body,
		Status:    m.Status,
		Error:     m.Error,
		CreatedAt: m.CreatedAt,
	}
}

// pagination reads limit and offset query parameters. Missing values are
// zero and get defaulted by the service.
func pagination(c *gin.Context) (int, int, error) {
	var vals [2]int
	for i, name := range []string{"limit", "offset"} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s must be an integer", common.ErrorValidation, name)
		}
		vals[i] = n
	}
	return vals[0], vals[1], nil
}

func bindError(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorValidation, err)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	pair, err := s.deps.Admins.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	pair, err := s.deps.Admins.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	start, err := timex.ParseDate(req.StartDate)
	if err != nil {
		s.writeError(c, bindError(err))
		return
	}
	end, err := timex.ParseDate(req.EndDate)
	if err != nil {
		s.writeError(c, bindError(err))
		return
	}

	in := services.EventInput{Name: req.Name, Description: req.Description, StartDate: start, EndDate: end}
	for _, p := range req.Prizes {
		in.Prizes = append(in.Prizes, services.PrizeInput{Name: p.Name, Description: p.Description, SeniorityIndex: p.SeniorityIndex})
	}

	event, err := s.deps.Events.CreateEvent(c.Request.Context(), adminID(c), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEventResponse(event))
}

func (s *Server) listEvents(c *gin.Context) {
	events, err := s.deps.Events.ListEvents(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// pathID returns the :id parameter. Records are keyed by UUID, so any other
// shape names nothing.
func pathID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if !common.IsUUID(id) {
		return "", common.ErrorNotFound
	}
	return id, nil
}

func (s *Server) getEvent(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	event, err := s.deps.Events.GetEvent(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEventResponse(event))
}

func (s *Server) presignPrizeUpload(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req imageUploadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeError(c, bindError(err))
			return
		}
	}

	up, err := s.deps.Images.PresignUpload(c.Request.Context(), id, req.ContentType)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": up.URL, "key": up.Key, "contentType": up.ContentType})
}

func (s *Server) presignPrizeDownload(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	url, err := s.deps.Images.PresignDownload(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (s *Server) generateQRCodes(c *gin.Context) {
	var req generateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := timex.ParseDeadline(req.ExpiresAt)
		if err != nil {
			s.writeError(c, bindError(err))
			return
		}
		expiresAt = &t
	}

	codes, err := s.deps.QRCodes.GenerateBatch(c.Request.Context(), adminID(c), req.Count, expiresAt)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"codes": toQRCodeResponses(codes)})
}

func toQRCodeResponses(codes []*models.QRCode) []qrCodeResponse {
	resp := make([]qrCodeResponse, 0, len(codes))
	for _, q := range codes {
		resp = append(resp, qrCodeResponse{Token: q.ID, CreatedAt: q.CreatedAt, ExpiresAt: q.ExpiresAt, Used: q.Used})
	}
	return resp
}

func (s *Server) listQRCodes(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	codes, err := s.deps.QRCodes.ListQRCodes(c.Request.Context(), limit, offset)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQRCodeResponses(codes))
}

func requiredEventID(c *gin.Context) (string, error) {
	id := c.Query("eventId")
	if id == "" {
		return "", fmt.Errorf("%w: eventId is required", common.ErrorValidation)
	}
	if !common.IsUUID(id) {
		return "", fmt.Errorf("%w: eventId must be a UUID", common.ErrorValidation)
	}
	return id, nil
}

func (s *Server) listEntries(c *gin.Context) {
	eventID, err := requiredEventID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	limit, offset, err := pagination(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	entries, err := s.deps.Dashboard.ListEntries(c.Request.Context(), eventID, limit, offset)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listWinners(c *gin.Context) {
	eventID, err := requiredEventID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	winners, err := s.deps.Dashboard.ListWinners(c.Request.Context(), eventID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]winnerResponse, 0, len(winners))
	for _, w := range winners {
		resp = append(resp, winnerResponse{entryResponse: toEntryResponse(&w.Entry), PrizeName: w.PrizeName, SeniorityIndex: w.SeniorityIndex})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listAttempts(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	attempts, err := s.deps.Dashboard.ListAttempts(c.Request.Context(), limit, offset)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]attemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, attemptResponse{
			ID:            a.ID,
			IPAddress:     a.IPAddress,
			UserAgent:     a.UserAgent,
			Type:          a.Type,
			QRToken:       a.QRCodeID,
			Success:       a.Success,
			FailureReason: a.FailureReason,
			CreatedAt:     a.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listMessages(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	msgs, err := s.deps.Messages.ListMessages(c.Request.Context(), limit, offset)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, resp)
}

// sendMessage answers 201 when the gateway accepted the message and 502 with
// the logged record when it did not.
func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	msg, err := s.deps.Messages.Send(c.Request.Context(), req.EntryID, req.To, req.Body)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, toMessageResponse(msg))
	case statusFor(err) == http.StatusServiceUnavailable:
		s.writeError(c, err)
	default:
		s.logger.Warn(c.Request.Context(), "message not delivered", "recipient", req.To, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Message delivery failed", "message": toMessageResponse(msg)})
	}
}
