package middleware

import (
	"fmt"

	pkgError "github.com/hansai/wa-bridge/pkg/error"
	"github.com/hansai/wa-bridge/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Recovery converts handler panics into JSON responses. Typed errors
// from pkg/error keep their status and code; anything else becomes a
// plain 500.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			res := utils.ResponseData{
				Status:  fiber.StatusInternalServerError,
				Code:    "INTERNAL_SERVER_ERROR",
				Message: fmt.Sprintf("%v", r),
			}
			if typed, ok := r.(pkgError.GenericError); ok {
				res.Status = typed.StatusCode()
				res.Code = typed.ErrCode()
				res.Message = typed.Error()
			}

			logrus.WithFields(logrus.Fields{
				"code":   res.Code,
				"status": res.Status,
			}).Errorf("Recovered from panic: %v", r)

			_ = ctx.Status(res.Status).JSON(res)
		}()

		return ctx.Next()
	}
}
