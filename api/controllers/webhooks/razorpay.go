package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/threadlinehq/threadline-backend/api/responses"
	razorpaywebhook "github.com/threadlinehq/threadline-backend/internal/webhooks/razorpay"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"github.com/threadlinehq/threadline-backend/pkg/metrics"
)

const (
	signatureHeader = "X-Razorpay-Signature"
	eventIDHeader   = "X-Razorpay-Event-Id"
)

type RazorpayWebhookService interface {
	HandleEvent(ctx context.Context, event *razorpaywebhook.Event) error
}

type razorpayWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type webhookAck struct {
	Success bool `json:"success"`
}

// RazorpayWebhook receives payment lifecycle events. Signature failures are
// client errors so Razorpay retries with the correct secret configuration;
// once a body verifies and parses the delivery is acknowledged no matter
// what the effects did.
func RazorpayWebhook(svc RazorpayWebhookService, secret string, guard razorpayWebhookGuard, met *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()

		// Rejected and duplicate deliveries count too; the label stays
		// "unknown" until the body decodes.
		eventLabel := ""
		defer func() {
			if met != nil {
				met.ObserveDuration(eventLabel, time.Since(start))
			}
		}()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := strings.TrimSpace(r.Header.Get(signatureHeader))
		if sigHeader == "" {
			if met != nil {
				met.IncRejected("signature_missing")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "razorpay signature missing"))
			return
		}
		if !validateRazorpaySignature(payload, secret, sigHeader) {
			if met != nil {
				met.IncRejected("signature_invalid")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid razorpay signature"))
			return
		}

		event, err := razorpaywebhook.Decode(payload)
		if err != nil {
			if met != nil {
				met.IncRejected("decode")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}
		eventLabel = event.Name
		if met != nil {
			met.IncReceived(event.Name)
		}

		eventID := event.DedupKey(strings.TrimSpace(r.Header.Get(eventIDHeader)))
		if eventID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "event has no identifiable entity"))
			return
		}
		if logg != nil {
			ctx = logg.WithEventID(ctx, eventID)
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteRaw(w, http.StatusOK, webhookAck{Success: true})
			return
		}

		if err := svc.HandleEvent(ctx, event); err != nil {
			_ = guard.Delete(ctx, eventID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, "razorpay event processed")
		}
		responses.WriteRaw(w, http.StatusOK, webhookAck{Success: true})
	}
}

func validateRazorpaySignature(payload []byte, secret, header string) bool {
	if header == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
