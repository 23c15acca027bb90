package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"propertychat/internal/model"
	"propertychat/internal/repository"
	"propertychat/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	userLabel      = color.New(color.FgGreen, color.Bold)
	assistantLabel = color.New(color.FgCyan, color.Bold)
	scoreLabel     = color.New(color.FgYellow)
)

var (
	storeBackend   string
	sqlitePath     string
	conversationID string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session in the terminal. Replies are delivered
immediately. Type /prefs to show collected preferences, /reset to start over
and /quit to exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := repository.LoadCatalog(listingsFile, areasFile)
		if err != nil {
			return err
		}
		kv, err := repository.OpenStore(repository.StoreConfig{Backend: storeBackend, SQLitePath: sqlitePath})
		if err != nil {
			return err
		}
		defer kv.Close()

		chat := service.NewChatService(
			service.NewAssistant(catalog, service.DefaultTopK),
			repository.NewConversationStore(kv),
			service.NewScheduler(),
			service.NewBroker(),
			service.ChatConfig{},
		)
		defer chat.Close()

		return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), chat, conversationID)
	},
}

func init() {
	chatCmd.Flags().StringVar(&storeBackend, "store", "memory", "conversation store (memory or sqlite)")
	chatCmd.Flags().StringVar(&sqlitePath, "sqlite-path", "propertychat.db", "SQLite database for --store sqlite")
	chatCmd.Flags().StringVar(&conversationID, "conversation", "", "resume a stored conversation by id")
}

// runChat drives one conversation from in until EOF or /quit
func runChat(ctx context.Context, in io.Reader, out io.Writer, chat *service.ChatService, id string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var state *model.ConversationState
	var err error
	if id == "" {
		state, err = chat.Create(ctx)
	} else {
		state, err = chat.History(ctx, id)
	}
	if err != nil {
		return err
	}
	id = state.ID
	fmt.Fprintf(out, "Conversation %s\n\n", id)
	for _, msg := range state.Messages {
		renderMessage(out, msg)
	}
	if len(state.Messages) == 1 {
		fmt.Fprintln(out, "Try asking:")
		for _, q := range service.StarterQuestions {
			fmt.Fprintf(out, "  - %s\n", q)
		}
		fmt.Fprintln(out)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/prefs":
			state, err := chat.History(ctx, id)
			if err != nil {
				return err
			}
			renderPreferences(out, state.Preferences)
			continue
		case "/reset":
			state, err := chat.Reset(ctx, id)
			if err != nil {
				return err
			}
			renderMessage(out, state.Messages[0])
			continue
		}

		result, err := chat.Send(ctx, id, line)
		if errors.Is(err, service.ErrEmptyMessage) {
			continue
		}
		if err != nil {
			return err
		}
		if result.Reply != nil {
			renderMessage(out, *result.Reply)
		}
	}
}

func renderMessage(out io.Writer, msg model.Message) {
	if msg.Sender == model.SenderUser {
		userLabel.Fprint(out, "you:")
		fmt.Fprintf(out, " %s\n", msg.Text)
		return
	}
	assistantLabel.Fprint(out, "assistant:")
	fmt.Fprintf(out, " %s\n", msg.Text)
	for i, l := range msg.Listings {
		fmt.Fprintf(out, "  %d. %s - %s, %s ", i+1, l.Listing.Title, l.Listing.Location, l.Listing.Price)
		scoreLabel.Fprintf(out, "(score %d/%d: %s)", l.Score, service.MaxScore, strings.Join(l.MatchedReasons, ", "))
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out)
}

func renderPreferences(out io.Writer, p model.Preferences) {
	show := func(label string, set bool, value func() string) {
		if set {
			fmt.Fprintf(out, "  %-9s %s\n", label+":", value())
		} else {
			fmt.Fprintf(out, "  %-9s -\n", label+":")
		}
	}
	fmt.Fprintf(out, "stage: %s\n", p.Stage())
	show("type", p.Type != nil, func() string { return string(*p.Type) })
	show("budget", p.Budget != nil, func() string { return model.FormatMoney(*p.Budget, "GBP") })
	show("bedrooms", p.Bedrooms != nil, func() string { return fmt.Sprint(*p.Bedrooms) })
	show("location", p.Location != nil, func() string { return *p.Location })
	fmt.Fprintln(out)
}
