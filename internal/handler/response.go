package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/httputil"
)

// NoDataMessage is the fallback message for a missing data source.
const NoDataMessage = "no data available"

// RespondWithData renders a dashboard payload. A missing data source is not
// an error for dashboards: it is answered with 200, the empty fallback body
// and an error message. Any other error goes through httputil.
func RespondWithData(c *gin.Context, err error, fallback gin.H, data interface{}) {
	if err == nil {
		c.JSON(http.StatusOK, data)
		return
	}
	if errors.Is(err, errors.ErrNoData) {
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("serving empty fallback")
		body := gin.H{"error": NoDataMessage}
		for k, v := range fallback {
			body[k] = v
		}
		c.JSON(http.StatusOK, body)
		return
	}
	httputil.RespondWithError(c, err)
}
