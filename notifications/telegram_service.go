package notifications

import (
	"fmt"
	"time"

	"gitlab.com/aoterocom/PennyWatchBot/helpers"
	tb "gopkg.in/tucnak/telebot.v2"
)

// TelegramService delivers decision alerts to a Telegram chat. Delivery is
// fire-and-forget: failures are logged and reported as false, never
// propagated.
type TelegramService struct {
	token  string
	chatId string
}

func NewTelegramService(token string, chatId string) *TelegramService {
	return &TelegramService{
		token:  token,
		chatId: chatId,
	}
}

func (t *TelegramService) SendAlert(message string) bool {
	b, err := tb.NewBot(tb.Settings{
		URL:    "",
		Token:  t.token,
		Poller: &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("telegram: %s", err.Error()))
		return false
	}

	id, err := b.ChatByID(t.chatId)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("telegram: %s", err.Error()))
		return false
	}

	if _, err := b.Send(id, message); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("telegram: %s", err.Error()))
		return false
	}
	return true
}
