// Package common holds helpers shared by the outbound service connectors.
package common

import (
	"github.com/futig/dash-chat/internal/config"
	pkgHTTP "github.com/futig/dash-chat/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds the JSON connector for one upstream service.
// Outbound requests are logged at debug level through the request context
// logger; the bearer token is only sent when configured.
func NewBaseConnector(service string, cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	return pkgHTTP.NewConnector(
		&pkgHTTP.ConnectorConfig{
			BaseURL: cfg.Url,
			Logger:  logger.Named(service),
		},
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
	)
}
