// Package telegram sends ticket release notifications through the Telegram
// Bot API.
//
// Authentication requires a bot token (from @BotFather) and a numeric chat
// ID. Messages use HTML formatting.
package telegram
