package provider

import (
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/internal/config"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// NewHTTPClient builds the shared HTTP client for outbound YouTube calls.
// Proxy configuration is established once at process start; when set, the
// oEmbed provider and every transcript tier route through it identically.
func NewHTTPClient(proxyCfg config.ProxyConfig, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	proxyURL := proxyCfg.HTTPSURL
	if proxyURL == "" {
		proxyURL = proxyCfg.HTTPURL
	}

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			logger.Log.Warn("invalid proxy URL, requests will go direct",
				zap.String("proxy", proxyURL),
				zap.Error(err),
			)
		} else {
			transport.Proxy = http.ProxyURL(parsed)
			logger.Log.Info("outbound proxy configured", zap.String("host", parsed.Host))
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
