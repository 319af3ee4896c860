package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"hrms/internal/config"
	"hrms/internal/employee"
	"hrms/internal/mailer"
	"hrms/internal/queue"
	"hrms/internal/store"
)

// Worker consumes invitation jobs and mails roster members their training
// details and questionnaire link.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "hrms:invitations")
	}

	var mail mailer.Mailer
	if cfg.SendgridKey != "" {
		mail = mailer.NewSendgrid(cfg.SendgridKey, cfg.MailFromName, cfg.MailFrom)
		log.Println("sendgrid configured")
	} else {
		mail = mailer.Console{}
		log.Println("SENDGRID_API_KEY not set, printing mail to console")
	}

	employees := employee.NewRepository(db.Client)

	msgs, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume failed: %v", err)
	}

	log.Println("worker started")
	for msg := range msgs {
		if msg.Type != "invitation" {
			log.Printf("skipping unknown message type %q", msg.Type)
			continue
		}
		var job queue.InvitationJob
		if err := json.Unmarshal(msg.Body, &job); err != nil {
			log.Printf("bad invitation payload: %v", err)
			continue
		}
		if err := process(ctx, employees, mail, job); err != nil {
			log.Printf("invitation for employee %s: %v", job.EmployeeID, err)
		}
	}
	log.Println("worker exited")
}

func process(ctx context.Context, employees *employee.Repository, mail mailer.Mailer, job queue.InvitationJob) error {
	emp, err := employees.Get(ctx, job.EmployeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		log.Printf("employee %s no longer exists, dropping invitation", job.EmployeeID)
		return nil
	}
	return mail.SendInvitation(emp.FirstName+" "+emp.LastName, emp.Email,
		job.Theme, job.Location, job.StartDate, job.EndDate, job.QCMURL)
}
