// cmd/seedcatalog/main.go: seeds demo products and the FESTIVE3 combo.
// Usage: go run ./cmd/seedcatalog
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/config"
	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/infra"
	"github.com/Team-Techentia/veedra-sub001/internal/model"
	"github.com/Team-Techentia/veedra-sub001/internal/pricing"
	"github.com/Team-Techentia/veedra-sub001/internal/repository"
	"github.com/Team-Techentia/veedra-sub001/internal/router"
	"github.com/Team-Techentia/veedra-sub001/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type seedProduct struct {
	code, name, price, tax string
}

var products = []seedProduct{
	{"DEMO-TEE", "Cotton Tee", "450", "5"},
	{"DEMO-CHINO", "Slim Chino", "900", "5"},
	{"DEMO-BLAZER", "Linen Blazer", "2400", "12"},
	{"DEMO-SOCKS", "Ankle Socks", "100", "12"},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	ctx := context.Background()
	prefixes := router.Prefixes(cfg)

	for i, sp := range products {
		barcode, err := pricing.BuildBarcode(prefixes.Standalone, fmt.Sprintf("%06d", 900000+i), pricing.EAN13Length)
		if err != nil {
			log.Fatal().Err(err).Str("code", sp.code).Msg("barcode error")
		}
		price := decimal.RequireFromString(sp.price)
		p := model.Product{
			Code:         sp.code,
			Barcode:      barcode,
			Name:         sp.name,
			Category:     "Demo",
			SellingPrice: price,
			MRP:          price.Mul(decimal.NewFromFloat(1.2)).Round(0),
			TaxRate:      decimal.RequireFromString(sp.tax),
			Quantity:     50,
			Role:         model.RoleStandalone,
			Active:       true,
		}
		res := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"selling_price", "mrp", "tax_rate", "quantity", "active"}),
		}).Create(&p)
		if res.Error != nil {
			log.Fatal().Err(res.Error).Str("code", sp.code).Msg("insert error")
		}
		log.Info().Str("code", sp.code).Str("barcode", barcode).Msg("product seeded")
	}

	maxDiscount := decimal.NewFromInt(200)
	combos := service.NewComboService(repository.NewComboRepository(db))
	_, err = combos.Create(ctx, dto.CreateComboRequest{
		Code: "FESTIVE3",
		Name: "Festive three-band",
		Slots: []dto.PriceSlotRequest{
			{Name: "budget", MinPrice: decimal.Zero, MaxPrice: decimal.NewFromInt(500), MaxItems: 1, Priority: 1},
			{Name: "mid", MinPrice: decimal.RequireFromString("500.01"), MaxPrice: decimal.NewFromInt(1000), MaxItems: 1, Priority: 1},
			{Name: "premium", MinPrice: decimal.RequireFromString("1000.01"), MaxPrice: decimal.NewFromInt(3000), MaxItems: 1, Priority: 1},
		},
		Rules:                     dto.ComboRulesRequest{MinTotalItems: 2},
		DiscountType:              string(model.DiscountPercentage),
		DiscountValue:             decimal.NewFromInt(10),
		MaxDiscount:               &maxDiscount,
		PreventHighValueInLowSlot: true,
	})
	switch {
	case errors.Is(err, service.ErrDuplicateCode):
		log.Info().Str("combo_code", "FESTIVE3").Msg("combo already present")
	case err != nil:
		log.Fatal().Err(err).Msg("combo seed error")
	}
	fmt.Println("demo catalog ready")
}
