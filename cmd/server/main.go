package main

import (
	"github.com/sirupsen/logrus"

	"modvault/internal/api"
	"modvault/internal/cache"
	"modvault/internal/config"
	"modvault/internal/registry"
	"modvault/internal/store"
	"modvault/internal/webhooks"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer st.DB.Close()

	c, err := cache.New(cfg.CacheSize)
	if err != nil {
		log.WithError(err).Fatal("failed to create cache")
	}

	svc := registry.New(st, c, &webhooks.LogDispatcher{Log: log}, log, registry.Site{
		Protocol:   cfg.Protocol,
		ServerName: cfg.ServerName,
	})

	r := api.SetupRouter(svc, []byte(cfg.SigningKey))

	log.WithField("addr", cfg.Addr).Info("starting server")
	if err := r.Run(cfg.Addr); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
