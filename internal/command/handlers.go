package command

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/grvsrs/matrixbot/internal/format"
	"github.com/grvsrs/matrixbot/internal/stats"
	"github.com/grvsrs/matrixbot/internal/suggest"
	"github.com/grvsrs/matrixbot/internal/version"
)

const (
	maxDice  = 100
	maxSides = 1000
)

// RegisterBuiltins adds the built-in command catalogue to r.
func RegisterBuiltins(r *Registry) {
	r.Register(Definition{
		Name:    "help",
		Summary: "List commands or get help for one",
		Usage:   "help [command]",
		Run:     helpCmd,
	})
	r.Register(Definition{
		Name:    "ping",
		Summary: "Check bot responsiveness",
		Run: func(ctx context.Context, req *Request) error {
			return req.reply(ctx, "🏓 Pong!")
		},
	})
	r.Register(Definition{
		Name:    "echo",
		Summary: "Echo back text",
		Usage:   "echo <text>",
		Run:     echoCmd,
	})
	r.Register(Definition{
		Name:    "time",
		Summary: "Show server time",
		Run: func(ctx context.Context, req *Request) error {
			return req.reply(ctx, "Server time: "+req.Now.UTC().Format("2006-01-02T15:04:05Z"))
		},
	})
	r.Register(Definition{
		Name:    "uptime",
		Summary: "Show bot uptime",
		Run: func(ctx context.Context, req *Request) error {
			return req.reply(ctx, "Uptime: "+format.Duration(req.Now.Sub(req.StartTime)))
		},
	})
	r.Register(Definition{
		Name:    "roll",
		Summary: "Roll dice (NdM)",
		Usage:   "roll [NdM]",
		Run:     rollCmd,
	})
	r.Register(Definition{
		Name:    "whoami",
		Summary: "Show your Matrix user ID",
		Run:     whoamiCmd,
	})
	r.Register(Definition{
		Name:    "roominfo",
		Summary: "Show room name and member count",
		Run:     roomInfoCmd,
	})
	r.Register(Definition{
		Name:    "encryptstatus",
		Summary: "Check if room encryption is enabled",
		Run: func(ctx context.Context, req *Request) error {
			if roomEncrypted(ctx, req) {
				return req.reply(ctx, "Encryption: enabled")
			}
			return req.reply(ctx, "Encryption: disabled")
		},
	})
	r.Register(Definition{
		Name:    "stats",
		Summary: "Show command usage stats",
		Run:     statsCmd,
	})
	r.Register(Definition{
		Name:    "suggest",
		Summary: "Record a suggestion for the bot",
		Usage:   "suggest <text>",
		Run:     suggestCmd,
	})
	r.Register(Definition{
		Name:    "suggestions",
		Summary: "List recorded suggestions",
		Run:     suggestionsCmd,
	})
	r.Register(Definition{
		Name:    "version",
		Summary: "Show bot and runtime versions",
		Run: func(ctx context.Context, req *Request) error {
			return req.reply(ctx, fmt.Sprintf("Bot: %s\nGo: %s", version.Version, runtime.Version()))
		},
	})
}

// RegisterAliases registers each alias as a thin definition delegating to its
// canonical command. Unknown targets are skipped and reported back.
func RegisterAliases(r *Registry, aliases map[string]string) []string {
	var skipped []string
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	for _, alias := range names {
		target := strings.ToLower(aliases[alias])
		def, ok := r.Get(target)
		if !ok {
			skipped = append(skipped, alias)
			continue
		}
		r.Register(Definition{
			Name:    strings.ToLower(alias),
			Summary: fmt.Sprintf("Alias for %s", def.Name),
			Usage:   def.Usage,
			Run:     def.Run,
		})
	}
	return skipped
}

func helpCmd(ctx context.Context, req *Request) error {
	if len(req.Args) > 0 {
		query := strings.ToLower(req.Args[0])
		def, ok := req.Registry.Get(query)
		if !ok {
			return req.reply(ctx, fmt.Sprintf("Unknown command: %s. Try %shelp", query, req.Prefix))
		}
		usage := req.Prefix + def.Name
		if def.Usage != "" {
			usage = req.Prefix + def.Usage
		}
		return req.reply(ctx, fmt.Sprintf("%s\nUsage: %s", def.Summary, usage))
	}

	var b strings.Builder
	b.WriteString("Commands:")
	for _, def := range req.Registry.List() {
		fmt.Fprintf(&b, "\n%s%s - %s", req.Prefix, def.Name, def.Summary)
	}
	return req.reply(ctx, b.String())
}

func echoCmd(ctx context.Context, req *Request) error {
	if req.RawArgs == "" {
		return req.reply(ctx, fmt.Sprintf("Usage: %secho <text>", req.Prefix))
	}
	return req.reply(ctx, req.RawArgs)
}

var diceRe = regexp.MustCompile(`^(\d+)d(\d+)$`)

type diceSpec struct {
	count int
	sides int
}

func parseDiceSpec(input string) (diceSpec, bool) {
	if input == "" {
		return diceSpec{count: 1, sides: 6}, true
	}
	m := diceRe.FindStringSubmatch(strings.ToLower(input))
	if m == nil {
		return diceSpec{}, false
	}
	count, err := strconv.Atoi(m[1])
	if err != nil {
		return diceSpec{}, false
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return diceSpec{}, false
	}
	if count < 1 || sides < 2 || count > maxDice || sides > maxSides {
		return diceSpec{}, false
	}
	return diceSpec{count: count, sides: sides}, true
}

func rollCmd(ctx context.Context, req *Request) error {
	var arg string
	if len(req.Args) > 0 {
		arg = req.Args[0]
	}
	spec, ok := parseDiceSpec(arg)
	if !ok {
		return req.reply(ctx, fmt.Sprintf("Usage: %sroll [NdM] (max %dd%d)", req.Prefix, maxDice, maxSides))
	}

	rolls := make([]string, spec.count)
	total := 0
	for i := range rolls {
		v := 1 + rand.Intn(spec.sides)
		total += v
		rolls[i] = strconv.Itoa(v)
	}
	return req.reply(ctx, fmt.Sprintf("Rolled %dd%d: %s (total %d)",
		spec.count, spec.sides, strings.Join(rolls, ", "), total))
}

func whoamiCmd(ctx context.Context, req *Request) error {
	// Deliberately omits the bot's own user ID and device ID.
	return req.reply(ctx, fmt.Sprintf("You are %s\nBot version: %s\n%s",
		req.Sender, version.Version, version.Source))
}

func roomEncrypted(ctx context.Context, req *Request) bool {
	content, err := req.Client.RoomStateEvent(ctx, req.RoomID, "m.room.encryption", "")
	if err != nil {
		return false
	}
	alg, _ := content["algorithm"].(string)
	return alg != ""
}

func roomInfoCmd(ctx context.Context, req *Request) error {
	roomName := "(unknown)"
	if content, err := req.Client.RoomStateEvent(ctx, req.RoomID, "m.room.name", ""); err == nil {
		if name, ok := content["name"].(string); ok {
			roomName = name
		}
	} else {
		roomName = "(unavailable)"
	}

	memberText := "Members: (unavailable)"
	if state, err := req.Client.RoomState(ctx, req.RoomID); err == nil {
		joined := 0
		for _, ev := range state {
			if ev.Type != "m.room.member" {
				continue
			}
			if membership, _ := ev.Content["membership"].(string); membership == "join" {
				joined++
			}
		}
		memberText = fmt.Sprintf("Members: %d", joined)
	}

	encrypted := "no"
	if roomEncrypted(ctx, req) {
		encrypted = "yes"
	}
	return req.reply(ctx, fmt.Sprintf("Room: %s\nRoom ID: %s\n%s\nEncrypted: %s",
		roomName, req.RoomID, memberText, encrypted))
}

func statsCmd(ctx context.Context, req *Request) error {
	snap, err := stats.Get(req.Store)
	if err != nil {
		return err
	}

	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(snap.ByCommand))
	for name, count := range snap.ByCommand {
		entries = append(entries, entry{name, count})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > 5 {
		entries = entries[:5]
	}

	top := make([]string, len(entries))
	for i, e := range entries {
		top[i] = fmt.Sprintf("%s: %d", e.name, e.count)
	}
	topText := strings.Join(top, ", ")
	if topText == "" {
		topText = "n/a"
	}
	last := snap.LastCommandAt
	if last == "" {
		last = "n/a"
	}
	return req.reply(ctx, fmt.Sprintf("Commands run: %d\nLast command: %s\nTop: %s",
		snap.TotalCommands, last, topText))
}

func suggestCmd(ctx context.Context, req *Request) error {
	if req.RawArgs == "" {
		return req.reply(ctx, fmt.Sprintf("Usage: %ssuggest <text>", req.Prefix))
	}
	s, err := suggest.Add(req.Store, req.RawArgs, req.Sender, req.RoomID, req.Now)
	if err != nil {
		return err
	}
	return req.reply(ctx, fmt.Sprintf("Saved suggestion #%d. Thanks!", s.ID))
}

func suggestionsCmd(ctx context.Context, req *Request) error {
	items, err := suggest.List(req.Store)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return req.reply(ctx, "No suggestions yet. Add one with "+req.Prefix+"suggest <text>")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Suggestions (%d):", len(items))
	for _, s := range items {
		fmt.Fprintf(&b, "\n#%d [%s] %s", s.ID, s.Sender, s.Text)
	}
	return req.reply(ctx, b.String())
}
