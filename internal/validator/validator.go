// Package validator registers the domain enum validators with Gin's binding
// engine so request structs can use them as struct tags.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"yieldvest/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerAll(v)
	}
}

func registerAll(v *validator.Validate) {
	_ = v.RegisterValidation("product_type", validateProductType)
	_ = v.RegisterValidation("risk_level", validateRiskLevel)
	_ = v.RegisterValidation("investment_status", validateInvestmentStatus)
}

func validateProductType(fl validator.FieldLevel) bool {
	return models.ProductType(fl.Field().String()).Valid()
}

func validateRiskLevel(fl validator.FieldLevel) bool {
	return models.RiskLevel(fl.Field().String()).Valid()
}

func validateInvestmentStatus(fl validator.FieldLevel) bool {
	return models.InvestmentStatus(fl.Field().String()).Valid()
}
