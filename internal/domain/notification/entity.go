package notification

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Kind of alert recorded in sent_notifications
type Kind string

const (
	KindPrice  Kind = "price"
	KindNews   Kind = "news"
	KindVolume Kind = "volume"
)

// Sent is a dedup record for an alert already delivered
type Sent struct {
	ContentHash string    `db:"content_hash"`
	Ticker      string    `db:"ticker"`
	Kind        Kind      `db:"notification_type"`
	Title       string    `db:"title"`
	SentAt      time.Time `db:"sent_at"`
}

func digest(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// PriceHash identifies a price alert for one recipient, ticker, price level and calendar day
func PriceHash(chatID int64, ticker string, price float64, day time.Time) string {
	return digest(fmt.Sprintf("%d_%s_price_%.2f_%s", chatID, ticker, price, day.UTC().Format("2006-01-02")))
}

// NewsHash identifies a news alert for one recipient
func NewsHash(chatID int64, ticker, headline string, published time.Time) string {
	return digest(fmt.Sprintf("%d_%s_%s_%d", chatID, ticker, headline, published.Unix()))
}

// VolumeHash allows one volume-spike alert per recipient, ticker and day
func VolumeHash(chatID int64, ticker string, day time.Time) string {
	return digest(fmt.Sprintf("%d_%s_volume_%s", chatID, ticker, day.UTC().Format("2006-01-02")))
}

// Title truncates an alert title to the stored width
func Title(s string) string {
	r := []rune(s)
	if len(r) > 100 {
		return string(r[:100])
	}
	return s
}
