package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/server/services"
	"github.com/gin-gonic/gin"
)

const msgBadRequest = "Invalid request body"

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid     bool   `json:"valid"`
	EventID   string `json:"eventId"`
	EventName string `json:"eventName"`
}

type submitRequest struct {
	QRToken        string `json:"qrToken"`
	EventID        string `json:"eventId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	WhatsAppNumber string `json:"whatsappNumber"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Pincode        string `json:"pincode"`
}

type submitResponse struct {
	Success            bool `json:"success"`
	VerificationIssued bool `json:"verificationIssued"`
}

type verifyResponse struct {
	Success   bool   `json:"success"`
	EntryCode string `json:"entryCode"`
	Name      string `json:"name"`
	EventName string `json:"eventName"`
}

func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{IP: ClientIP(c.Request), UserAgent: c.Request.UserAgent()}
}

func (s *Server) validateQR(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	res, err := s.deps.Validator.ValidateQRCode(c.Request.Context(), req.Token, requestMeta(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, validateResponse{Valid: true, EventID: res.EventID, EventName: res.EventName})
}

func (s *Server) submitEntry(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	sub, err := s.deps.Submitter.SubmitEntry(c.Request.Context(), services.SubmitEntryInput{
		QRToken:        req.QRToken,
		EventID:        req.EventID,
		Name:           req.Name,
		Email:          req.Email,
		WhatsAppNumber: req.WhatsAppNumber,
		Address:        req.Address,
		City:           req.City,
		Pincode:        req.Pincode,
		Meta:           requestMeta(c),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setVerificationCookie(c, sub.VerificationToken, int(sub.TokenMaxAge.Seconds()))
	c.JSON(http.StatusCreated, submitResponse{Success: true, VerificationIssued: true})
}

func (s *Server) verifyEntry(c *gin.Context) {
	token, _ := c.Cookie(common.VerificationCookieName)

	confirmation, err := s.deps.Verifier.VerifyEntry(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrVerificationExpired) {
			s.setVerificationCookie(c, "", -1)
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, verifyResponse{
		Success:   true,
		EntryCode: confirmation.EntryCode,
		Name:      confirmation.Name,
		EventName: confirmation.EventName,
	})
}

// setVerificationCookie writes an HttpOnly, SameSite=Strict cookie. A
// negative maxAge deletes it.
func (s *Server) setVerificationCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(common.VerificationCookieName, value, maxAge, "/", "", s.opts.CookieSecure, true)
}
