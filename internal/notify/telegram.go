package notify

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/sssohn/pointsd/internal/db"
	"github.com/sssohn/pointsd/internal/models"
	"github.com/sssohn/pointsd/internal/observability"
)

// Telegram DMs teachers about workflow movement. Everything here is
// best-effort: a failed send is logged and dropped.
type Telegram struct {
	bot      *tgbotapi.BotAPI
	database *sql.DB
	log      *zap.Logger
}

// NewTelegram returns nil (disabled) when the token is empty.
func NewTelegram(token string, database *sql.DB, log *zap.Logger) (*Telegram, error) {
	if token == "" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Info("telegram notifier enabled", zap.String("bot", bot.Self.UserName))
	return &Telegram{bot: bot, database: database, log: log}, nil
}

func (t *Telegram) RequestSubmitted(ctx context.Context, req *models.PointRequest) {
	text := fmt.Sprintf("새 상벌점 요청 #%d: %s %d점, 사유 %s",
		req.ID, typeLabel(req.Type), req.Points, req.Reason)
	t.send(ctx, req.HomeroomTeacher, text)
}

func (t *Telegram) RequestDisposed(ctx context.Context, req *models.PointRequest) {
	verdict := "승인"
	if req.Status == models.RequestRejected {
		verdict = "반려"
	}
	text := fmt.Sprintf("상벌점 요청 #%d 처리 결과: %s", req.ID, verdict)
	t.send(ctx, req.RequestingTeacher, text)
}

func (t *Telegram) send(ctx context.Context, accountID int64, text string) {
	acc, err := db.GetAccountByID(ctx, t.database, accountID)
	if err != nil || acc == nil || acc.TelegramChatID == nil {
		return
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(*acc.TelegramChatID, text)); err != nil {
		if isSystemErr(err) {
			observability.CaptureErr(err)
		}
		t.log.Warn("telegram send failed", zap.Int64("account", accountID), zap.Error(err))
	}
}

func typeLabel(t models.PointType) string {
	if t == models.PointDemerit {
		return "벌점"
	}
	return "상점"
}

// 5xx, 429 and timeouts are worth an alert; telegram-side validation noise is not.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "502") ||
		strings.Contains(s, "503") || strings.Contains(s, "timeout")
}
