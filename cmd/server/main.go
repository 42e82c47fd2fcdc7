package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"bank-assistant-go/internal/assist"
	"bank-assistant-go/internal/bot"
	"bank-assistant-go/internal/config"
	httpserver "bank-assistant-go/internal/http"
	"bank-assistant-go/internal/intent"
	"bank-assistant-go/internal/kb"
	"bank-assistant-go/internal/render"
	"bank-assistant-go/internal/store"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	doc, persister, err := loadDocument(cfg)
	if err != nil {
		log.Fatal(err)
	}

	seed := cfg.HistorySeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	st := store.New(doc, persister,
		store.WithSeed(seed),
		store.WithHistoryWindow(cfg.HistoryWindowDays),
	)

	classifier := intent.NewClassifier(intent.DefaultCategories)
	renderer := &render.StatementRenderer{BankName: doc.BankInfo.Name}

	opts := []bot.Option{}
	if cfg.OpenAIKey != "" {
		opts = append(opts, bot.WithResponder(assist.NewClient(cfg)))
	}
	b := bot.New(st, classifier, renderer, opts...)

	r := httpserver.NewServer(cfg, st, b)
	log.Printf("%s listening on :%s", cfg.BotName, cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// loadDocument picks the document source: Postgres when DATABASE_URL is set,
// otherwise the flat file. A fresh database is seeded from the file once.
func loadDocument(cfg *config.Config) (*kb.Document, store.Persister, error) {
	if cfg.DatabaseURL == "" {
		doc, err := kb.Load(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return doc, store.NewFilePersister(cfg.DataFile), nil
	}

	p, err := store.OpenGormPersister(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := p.Load()
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		doc, err = kb.Load(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		if err := p.Save(doc); err != nil {
			return nil, nil, err
		}
	}
	return doc, p, nil
}
