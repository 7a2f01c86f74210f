package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"mood-ai/internal/ai"
	"mood-ai/internal/config"
	"mood-ai/internal/db"
	"mood-ai/internal/domain"
	"mood-ai/internal/repository"
	"mood-ai/internal/service"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	chatRepo := repository.NewPgChatRepository(pool)
	userSvc := service.NewUserService(logger, userRepo, chatRepo)
	responder := ai.NewHTTPResponder(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)

	user, authed := loginFlow(ctx, reader, userSvc)

	timeline := service.NewTimeline()
	var conv *service.ConversationService
	if authed {
		conv = service.NewConversationService(logger, timeline, responder, chatRepo, user.ID)
		if err := timeline.LoadHistory(ctx, chatRepo, user.ID); err != nil {
			fmt.Printf("No se pudo cargar el historial: %v\n", err)
		} else if timeline.Len() > 0 {
			fmt.Printf("Historial cargado: %d turnos previos.\n", timeline.Len())
		}
	} else {
		conv = service.NewConversationService(logger, timeline, responder, nil, "")
		fmt.Println("Sesion anonima: nada se guarda.")
	}

	// Las confirmaciones de escritura llegan por eventos; el loop de chat
	// nunca espera por ellas.
	go func() {
		for ev := range conv.Events() {
			if ev.Kind == service.TurnPersisted {
				fmt.Printf("  [guardado %s]\n", ev.Record.ID)
			}
		}
	}()

	chatLoop(ctx, reader, conv, timeline)
}

func loginFlow(ctx context.Context, reader *bufio.Reader, userSvc *service.UserService) (domain.User, bool) {
	fmt.Println("===== Mood AI =====")
	fmt.Print("Email (enter para modo anonimo): ")
	emailAddr, _ := reader.ReadString('\n')
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" {
		return domain.User{}, false
	}

	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	user, err := userSvc.Authenticate(ctx, emailAddr, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			fmt.Println("Credenciales invalidas, continuando en modo anonimo.")
		} else {
			fmt.Printf("Error de login: %v. Continuando en modo anonimo.\n", err)
		}
		return domain.User{}, false
	}

	fmt.Printf("Hola, %s.\n", user.Email)
	return user, true
}

func chatLoop(ctx context.Context, reader *bufio.Reader, conv *service.ConversationService, timeline *service.Timeline) {
	fmt.Println("---- Modo Chat ('/stats' para estadisticas, 'salir' para terminar) ----")
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			fmt.Println("Hasta pronto.")
			return
		}
		if text == "/stats" {
			printStats(timeline)
			continue
		}
		if text == "/history" {
			printHistory(timeline)
			continue
		}

		rec, err := conv.Send(ctx, text)
		if err != nil {
			if errors.Is(err, service.ErrEmptyMessage) {
				continue
			}
			if errors.Is(err, service.ErrSendInFlight) {
				fmt.Println("Todavia hay un mensaje en vuelo.")
				continue
			}
			fmt.Printf("error generando respuesta: %v\n", err)
			continue
		}

		fmt.Printf("IA > %s\n", rec.AIResponse)
		if rec.HasMoodData() {
			fmt.Printf("  [%s, score %.2f]\n", rec.Sentiment, *rec.MoodScore)
		}
	}
}

func printStats(timeline *service.Timeline) {
	stats := service.AggregateMood(timeline.Records())
	fmt.Printf("Turnos con sentimiento: %d (POS %d / NEG %d / NEU %d)\n",
		stats.TotalCount, stats.PositiveCount, stats.NegativeCount, stats.NeutralCount)
	if stats.TotalCount > 0 {
		fmt.Printf("Promedio de animo: %.2f\n", stats.AverageMoodScore)
	}
}

func printHistory(timeline *service.Timeline) {
	records := timeline.Records()
	if len(records) == 0 {
		fmt.Println("Sin turnos todavia.")
		return
	}
	for _, rec := range records {
		fmt.Printf("[%s] Tu: %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.UserMessage)
		fmt.Printf("          IA: %s\n", rec.AIResponse)
	}
}
