package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Mailer sends one HTML message.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type toRecipient struct {
	Email emailAddress `json:"email_address"`
}

// ZeptoMailer posts messages to the ZeptoMail HTTP API.
type ZeptoMailer struct {
	APIURL   string // e.g. https://api.zeptomail.com/v1.1/email
	APIKey   string // e.g. Zoho-enczapikey xxxxx
	From     string
	FromName string
	Client   *http.Client
}

func NewZeptoMailer(apiURL, apiKey, from, fromName string) *ZeptoMailer {
	return &ZeptoMailer{
		APIURL:   apiURL,
		APIKey:   apiKey,
		From:     from,
		FromName: fromName,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *ZeptoMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload := emailRequest{
		From:     emailAddress{Address: m.From, Name: m.FromName},
		To:       []toRecipient{{Email: emailAddress{Address: to}}},
		Subject:  subject,
		HtmlBody: htmlBody,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", m.APIKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}
	return nil
}

// LogMailer only logs. Used when no mail provider is configured.
type LogMailer struct {
	Log *zap.Logger
}

func (m LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.Log.Info("email not sent, no provider configured",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
