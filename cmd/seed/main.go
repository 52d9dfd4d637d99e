// Command seed populates a development database with fake doctors, patients
// and availability windows.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"turnoplus/config"
	"turnoplus/internal/domain"
	"turnoplus/internal/lock"
	"turnoplus/internal/repository"
	"turnoplus/internal/service"
	"turnoplus/pkg/database"
	"turnoplus/pkg/logger"
)

var specialties = []string{
	"Cardiology", "Dermatology", "Pediatrics", "Neurology",
	"Traumatology", "Ophthalmology", "General Medicine",
}

func main() {
	doctors := flag.Int("doctors", 5, "number of doctors to create")
	patients := flag.Int("patients", 20, "number of patients to create")
	days := flag.Int("days", 14, "days of availability to publish per doctor")
	flag.Parse()

	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, "./migrations", log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(service.Deps{
		Repos:  repos,
		Logger: log,
		Config: cfg,
		Locker: lock.NewLocalLocker(),
	})

	ctx := context.Background()

	adminID, err := services.User.Create(ctx, domain.CreateUserDTO{
		Email:    "admin@turnoplus.local",
		Password: "admin123",
		FullName: "TurnoPlus Admin",
		Role:     domain.UserRoleAdmin,
	})
	if err != nil {
		log.Warn("admin creation skipped", zap.Error(err))
	} else {
		log.Info("admin created", zap.Int64("userId", adminID))
	}

	officeID, err := repos.Office.Create(ctx, domain.CreateOfficeDTO{
		Name:     "Consulting Room 1",
		Location: gofakeit.Address().Address,
	})
	if err != nil {
		log.Fatal("office creation failed", zap.Error(err))
	}

	doctorIDs := make([]int64, 0, *doctors)
	for i := 0; i < *doctors; i++ {
		specialty := gofakeit.RandomString(specialties)
		license := fmt.Sprintf("MN-%d", gofakeit.Number(10000, 99999))
		years := gofakeit.Number(1, 35)

		id, err := services.User.Create(ctx, domain.CreateUserDTO{
			Email:           gofakeit.Email(),
			Password:        "doctor123",
			FullName:        fmt.Sprintf("Dr. %s %s", gofakeit.FirstName(), gofakeit.LastName()),
			Role:            domain.UserRoleDoctor,
			Specialty:       &specialty,
			LicenseNumber:   &license,
			YearsExperience: &years,
			OfficeID:        &officeID,
		})
		if err != nil {
			log.Fatal("doctor creation failed", zap.Error(err))
		}
		doctorIDs = append(doctorIDs, id)
	}
	log.Info("doctors created", zap.Int("count", len(doctorIDs)))

	for i := 0; i < *patients; i++ {
		docType := "DNI"
		docNumber := fmt.Sprintf("%d", gofakeit.Number(10000000, 45000000))
		address := gofakeit.Address().Address
		phone := gofakeit.Phone()
		dob := gofakeit.DateRange(
			time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2007, 12, 31, 0, 0, 0, 0, time.UTC),
		)
		obraSocial := gofakeit.Company()
		obraSocialNumber := fmt.Sprintf("%d", gofakeit.Number(100000, 999999))

		_, err := services.User.Create(ctx, domain.CreateUserDTO{
			Email:            gofakeit.Email(),
			Password:         "patient123",
			FullName:         gofakeit.Name(),
			Role:             domain.UserRolePatient,
			DocumentType:     &docType,
			DocumentNumber:   &docNumber,
			Address:          &address,
			Phone:            &phone,
			DateOfBirth:      &dob,
			ObraSocialName:   &obraSocial,
			ObraSocialNumber: &obraSocialNumber,
		})
		if err != nil {
			log.Fatal("patient creation failed", zap.Error(err))
		}
	}
	log.Info("patients created", zap.Int("count", *patients))

	// Morning and afternoon windows on weekdays for each doctor.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	windows := 0
	for _, doctorID := range doctorIDs {
		for day := 1; day <= *days; day++ {
			date := today.AddDate(0, 0, day)
			if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
				continue
			}

			morning := time.Date(date.Year(), date.Month(), date.Day(), 9, 0, 0, 0, time.UTC)
			afternoon := time.Date(date.Year(), date.Month(), date.Day(), 14, 0, 0, 0, time.UTC)

			for _, startAt := range []time.Time{morning, afternoon} {
				_, err := services.Availability.Create(ctx, domain.CreateAvailabilityDTO{
					DoctorID: doctorID,
					StartAt:  startAt,
					EndAt:    startAt.Add(3 * time.Hour),
				})
				if err != nil {
					log.Fatal("availability creation failed",
						zap.Int64("doctorId", doctorID),
						zap.Time("startAt", startAt),
						zap.Error(err),
					)
				}
				windows++
			}
		}
	}

	log.Info("seeding complete",
		zap.Int("doctors", len(doctorIDs)),
		zap.Int("patients", *patients),
		zap.Int("windows", windows),
	)
}
