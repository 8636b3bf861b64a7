// Command send-test-mail composes a sample decision notification and sends it
// with the configured SMTP settings, to check them before going live.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"proofok-api/config"
	"proofok-api/models"
	"proofok-api/services"
)

func main() {
	os.Exit(run())
}

// run returns the exit status so deferred cleanup, including waiting for a
// backgrounded send, happens before the process exits.
func run() int {
	log.Println("📧 Sending test notification...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}

	var (
		modeRaw  string
		decision string
		link     string
	)
	flag.StringVar(&modeRaw, "mode", "sync", "delivery mode: sync, async or off")
	flag.StringVar(&decision, "decision", "approved", "sample decision: approved or rejected")
	flag.StringVar(&link, "link", "", "review link quoted in the message (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("❌ invalid configuration: %v", err)
		return 2
	}
	logs := config.InitLogging("send-test-mail", cfg.LogDir)
	defer logs.Close()

	mode, err := services.ParseDeliveryMode(modeRaw)
	if err != nil {
		log.Printf("❌ %v", err)
		return 2
	}
	parsed, ok := models.ParseDecision(decision)
	if !ok {
		log.Printf("❌ invalid decision %q", decision)
		return 2
	}

	pool := services.NewWorkerPool(1, 1)
	defer pool.Close()
	dispatcher, err := services.NewNotificationDispatcher(mode, config.NewMailer(cfg.Mail), pool, cfg.Mail.Timeout())
	if err != nil {
		log.Printf("❌ failed to configure notifications: %v", err)
		return 2
	}

	now := time.Now().UTC()
	id := services.NewSubmissionID()
	rec := models.NewRecord(id, "test-proof.pdf", "test-proof.pdf", now)
	ev := models.DecisionEvent{
		Timestamp:    now,
		Decision:     parsed,
		Comment:      "This is a test notification.",
		ReviewerName: "ProofOK test",
	}

	msg := services.NewNotificationComposer().Compose(rec, ev, link)
	res := dispatcher.Dispatch(context.Background(), msg)

	log.Printf("➡️  %s via %s: %s", mode, cfg.Mail.Endpoint(), res.Outcome)
	switch res.Outcome {
	case services.OutcomeBackgrounded:
		log.Printf("⏳ %s Waiting for it to finish before exiting.", res.Warning)
		return 1
	case services.OutcomeFailed:
		log.Printf("❌ %s", res.Warning)
		return 1
	}
	log.Printf("✅ Test notification %q handled", msg.Subject)
	return 0
}
