package v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/hazard_alert_relay/internal/config"
	"github.com/sirupsen/logrus"
)

// SensorAuthMiddleware guards the sensor ingest endpoint with the
// shared X-SECRET header. An empty configured secret leaves the
// endpoint open, which is the development default.
func SensorAuthMiddleware(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.SensorSecret == "" {
			c.Next()
			return
		}

		secret := c.GetHeader("X-SECRET")
		if secret == "" {
			log.Warn("Sensor secret missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "secret required"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(secret), []byte(cfg.SensorSecret)) != 1 {
			log.Warn("Invalid sensor secret provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
			return
		}

		c.Next()
	}
}
