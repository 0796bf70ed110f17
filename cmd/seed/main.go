package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"telegram-clinic-support/internal/domain/model"
	pg "telegram-clinic-support/internal/infra/db/postgres"

	"telegram-clinic-support/internal/config"
)

// Seeds a handful of patients and pending appointments so /md_brief and
// /md_followups have something to show during local development.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	patientRepo := pg.NewPatientRepo(pool)
	appointmentRepo := pg.NewAppointmentRepo(pool)

	seed := []struct {
		TgID     int64
		Username string
		Booking  string
	}{
		{100001, "ada", "Ada Lovelace, Friday 3pm"},
		{100002, "bob", "Bob Smith, Monday 10am"},
		{100003, "carol", "Carol Jones, Wednesday noon"},
	}

	for _, s := range seed {
		p, err := model.NewPatient("", s.TgID, s.Username)
		if err != nil {
			log.Fatalf("build patient %d: %v", s.TgID, err)
		}
		if err := patientRepo.Save(ctx, p); err != nil {
			log.Fatalf("save patient %d: %v", s.TgID, err)
		}

		req, err := model.ParseBooking(s.Booking)
		if err != nil {
			log.Fatalf("parse booking %q: %v", s.Booking, err)
		}
		appt, err := model.NewAppointment(s.TgID, s.TgID, req)
		if err != nil {
			log.Fatalf("build appointment for %d: %v", s.TgID, err)
		}
		if err := appointmentRepo.Save(ctx, appt); err != nil {
			log.Fatalf("save appointment for %d: %v", s.TgID, err)
		}
		fmt.Printf("seeded: %s -> %q (id=%s)\n", s.Username, s.Booking, appt.ID)
	}

	fmt.Println("✅ Seeding complete.")
}
