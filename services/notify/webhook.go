package notifysvc

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/mtihani/core"
)

// SignatureHeader carries the hex HMAC-SHA256 of the body, keyed with the webhook secret.
const SignatureHeader = "X-Mtihani-Signature"

// WebhookSink POSTs events as JSON.
type WebhookSink struct {
	url    string
	secret string
}

func NewWebhookSink(url, secret string) *WebhookSink {
	return &WebhookSink{url: url, secret: secret}
}

func (s *WebhookSink) Name() string { return "webhook" }

func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *WebhookSink) Send(ctx context.Context, evt core.QuizCompleted) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if s.secret != "" {
		headers[SignatureHeader] = Sign(s.secret, body)
	}

	res, err := send(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: s.url,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return errors.Wrap(err, "posting event")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("webhook answered %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// send performs req bound to ctx, so the fanout timeout cancels it.
func send(ctx context.Context, req rest.Request) (*rest.Response, error) {
	hreq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	hres, err := rest.MakeRequest(hreq.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return rest.BuildResponse(hres)
}
