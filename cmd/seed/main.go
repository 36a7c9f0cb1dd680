package main

import (
	"flag"
	"log"
	"os"

	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/database"
	"ai-chatbot-be/pkg/retrieval"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var sampleFAQs = []model.FAQ{
	{Question: "¿A qué hora abren?", Answer: "Abrimos de lunes a viernes de 9:00 a 22:00 y los fines de semana de 10:00 a 23:00.", Tags: "horario"},
	{Question: "¿Hacen envíos a domicilio?", Answer: "Sí, hacemos envíos dentro de la ciudad. El costo depende de la zona.", Tags: "envios"},
	{Question: "¿Qué formas de pago aceptan?", Answer: "Aceptamos efectivo, tarjeta de crédito y débito, y transferencia.", Tags: "pagos"},
	{Question: "¿Dónde están ubicados?", Answer: "Estamos en Av. Reforma 123, Col. Centro.", Tags: "ubicacion"},
}

var sampleMenu = []model.Product{
	{Name: "Pizza Margarita", Price: 150, Description: "Tomate, mozzarella y albahaca", Category: "pizzas", Available: true},
	{Name: "Pizza Pepperoni", Price: 170, Description: "Pepperoni y mozzarella", Category: "pizzas", Available: true},
	{Name: "Tacos al Pastor", Price: 90, Description: "Orden de 5 tacos con piña", Category: "tacos", Available: true},
	{Name: "Agua de Horchata", Price: 35, Description: "Vaso de 500 ml", Category: "bebidas", Available: true},
}

func main() {
	dataDir := flag.String("data", "", "directory with faqs.csv and menu.csv; built-in samples when empty")
	reset := flag.Bool("reset", false, "delete existing FAQs and products first")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	faqs, products := sampleFAQs, sampleMenu
	if *dataDir != "" {
		src, err := retrieval.LoadDataDir(*dataDir, logger.NewNopLogger())
		if err != nil {
			log.Fatalf("Error: reading %s: %v", *dataDir, err)
		}
		faqs, products = fromSources(src)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if *reset {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&model.FAQ{}).Error; err != nil {
				return err
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&model.Product{}).Error; err != nil {
				return err
			}
		}
		if len(faqs) > 0 {
			if err := tx.Create(&faqs).Error; err != nil {
				return err
			}
		}
		if len(products) > 0 {
			if err := tx.Create(&products).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error: seeding failed: %v", err)
	}

	log.Printf("Seeded %d FAQs and %d products. Rebuild the index from the admin API to serve them.", len(faqs), len(products))
}

func fromSources(src retrieval.Sources) ([]model.FAQ, []model.Product) {
	faqs := make([]model.FAQ, 0, len(src.FAQs))
	for _, f := range src.FAQs {
		faqs = append(faqs, model.FAQ{Question: f.Question, Answer: f.Answer, Tags: f.Tags})
	}
	products := make([]model.Product, 0, len(src.Catalog))
	for _, c := range src.Catalog {
		products = append(products, model.Product{
			Name:        c.Name,
			Price:       c.Price,
			Description: c.Description,
			Category:    c.Category,
			Available:   c.Available,
		})
	}
	return faqs, products
}
