package setup

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/itchan-dev/authgate/backend/internal/proxy"
	"github.com/itchan-dev/authgate/backend/internal/utils/email"
	"github.com/itchan-dev/authgate/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier(t *testing.T) {
	cfg := &config.Config{}
	assert.IsType(t, email.LogNotifier{}, notifier(cfg))

	cfg.Private.Email.SMTPServer = "smtp.example.com"
	assert.IsType(t, &email.Email{}, notifier(cfg))
}

func TestCompletionHandler(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		h, err := completionHandler(&config.Config{})
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/completions", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("configured", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Public.Completion.UpstreamURL = "https://api.example.com"
		h, err := completionHandler(cfg)
		require.NoError(t, err)
		assert.IsType(t, &proxy.Proxy{}, h)
	})

	t.Run("invalid url", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Public.Completion.UpstreamURL = "not a url"
		_, err := completionHandler(cfg)
		assert.Error(t, err)
	})
}
