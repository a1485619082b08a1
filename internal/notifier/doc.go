// Package notifier pushes match summaries to chat and social channels.
//
// DryRunNotifier prints what would be sent, TwitterNotifier posts one tweet per
// match using OAuth1 credentials from the environment, and TelegramNotifier sends a
// single HTML digest to a chat through the Bot API.
package notifier
