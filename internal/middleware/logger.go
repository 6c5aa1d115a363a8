package middleware

import (
    "log"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
)

// RequestLogger logs one line per request through the standard logger.
func RequestLogger() echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:  true,
        LogURI:     true,
        LogStatus:  true,
        LogLatency: true,
        LogError:    true,
        HandleError: true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            if v.Error != nil {
                log.Printf("%s %s %d %s err=%v", v.Method, v.URI, v.Status, v.Latency.Round(time.Microsecond), v.Error)
                return nil
            }
            log.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency.Round(time.Microsecond))
            return nil
        },
    })
}
