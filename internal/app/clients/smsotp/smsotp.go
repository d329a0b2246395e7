// internal/app/clients/smsotp/smsotp.go

// Package smsotp wraps the Twilio Verify API: the provider generates,
// delivers, and checks phone OTPs, so no code value ever passes through or
// is stored by this application.
package smsotp

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
)

// DefaultBaseURL is the production Verify endpoint.
const DefaultBaseURL = "https://verify.twilio.com/v2"

// statusApproved is Verify's status for a correct code.
const statusApproved = "approved"

// Client calls one Verify service.
type Client struct {
	http       *resty.Client
	serviceSID string
}

// New creates a Verify client. baseURL is overridable for tests; pass
// DefaultBaseURL in production.
func New(baseURL, accountSID, authToken, serviceSID string) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetBasicAuth(accountSID, authToken)
	return &Client{http: http, serviceSID: serviceSID}
}

type verification struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// Send asks the provider to deliver an OTP to phone over SMS.
func (c *Client) Send(ctx context.Context, phone string) error {
	var out verification
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":      phone,
			"Channel": "sms",
		}).
		SetResult(&out).
		Post("/Services/" + c.serviceSID + "/Verifications")
	if err != nil {
		return apperr.Upstream("OTP provider", err)
	}
	if resp.IsError() {
		return apperr.Upstream("OTP provider",
			fmt.Errorf("send verification: %s: %s", resp.Status(), resp.String()))
	}
	return nil
}

// Check verifies the code the user typed against the provider. A wrong or
// expired code is the caller's fault, not the provider's, so it maps to a
// 400.
func (c *Client) Check(ctx context.Context, phone, code string) error {
	var out verification
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   phone,
			"Code": code,
		}).
		SetResult(&out).
		Post("/Services/" + c.serviceSID + "/VerificationCheck")
	if err != nil {
		return apperr.Upstream("OTP provider", err)
	}
	if resp.IsError() {
		// Verify returns 404 for an expired/unknown verification.
		if resp.StatusCode() == 404 {
			return apperr.BadRequest("OTP expired or not found")
		}
		return apperr.Upstream("OTP provider",
			fmt.Errorf("check verification: %s: %s", resp.Status(), resp.String()))
	}
	if out.Status != statusApproved {
		return apperr.BadRequest("invalid OTP")
	}
	return nil
}
