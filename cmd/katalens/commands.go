package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gabriel-vasile/mimetype"
	flag "github.com/spf13/pflag"

	"kata_lens/internal/model"
	"kata_lens/internal/recognizer"
	"kata_lens/internal/service"
)

var errUsage = errors.New("invalid arguments (see katalens --help)")

// userFacingError replaces the text of err without hiding it from errors.Is.
type userFacingError struct {
	msg string
	err error
}

func (e *userFacingError) Error() string { return e.msg }
func (e *userFacingError) Unwrap() error { return e.err }

type app struct {
	history    service.HistoryService
	flashcards service.FlashcardService
	ingest     service.IngestService
	out        io.Writer
	logger     *slog.Logger
	asJSON     bool
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "scan":
		return a.scan(ctx, args[1:])
	case "history":
		return a.historyCommand(ctx, args[1:])
	case "cards":
		return a.cardsCommand(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

// readImageDataURL turns an image file into a base64 data URL.
func readImageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%s is not an image (detected %s)", path, mtype.String())
	}
	return "data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (a *app) scan(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: scan needs exactly one image path", errUsage)
	}
	imageData, err := readImageDataURL(args[0])
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := a.ingest.RecognizeAndIngest(ctx, imageData)
	a.logger.Debug("Scan finished",
		slog.Duration("took", time.Since(start)),
		slog.Float64("estimated_cost_usd", recognizer.EstimateCost()),
	)
	if err != nil && res == nil {
		return &userFacingError{msg: "识别失败: " + recognizer.UserMessage(err), err: err}
	}
	if printErr := a.printScan(res); printErr != nil {
		return printErr
	}
	if err != nil {
		return &userFacingError{msg: "历史记录已保存，但闪卡保存失败: " + err.Error(), err: err}
	}
	return nil
}

func (a *app) printScan(res *service.IngestResult) error {
	if a.asJSON {
		return a.printJSON(res)
	}
	r := res.Recognition
	fmt.Fprintf(a.out, "印尼语原文:\n%s\n\n中文翻译:\n%s\n\n", r.IndonesianText, r.ChineseTranslation)
	fmt.Fprintf(a.out, "标记单词 (%d):\n", len(r.WordParses))
	for _, wp := range r.WordParses {
		fmt.Fprintf(a.out, "  %s [%s] %s (词根: %s)\n", wp.Word, wp.PartOfSpeech, wp.Meaning, wp.Root)
	}
	fmt.Fprintf(a.out, "\n已保存历史记录 %s，闪卡 %d 张\n", res.History.ID, len(res.Flashcards))
	return nil
}

func (a *app) historyCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: history needs a subcommand", errUsage)
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("history list", flag.ContinueOnError)
		page := fs.Int("page", 1, "page number, starting at 1")
		limit := fs.Int("limit", 0, "items per page (default from config)")
		keyword := fs.String("search", "", "only items whose text contains this keyword")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		p, err := a.history.Page(ctx, *keyword, *page, *limit)
		if err != nil {
			a.logger.Warn("Failed to load history, showing an empty list", slog.Any("error", err))
			p = service.Paginate(nil, *page, *limit)
		}
		if a.asJSON {
			return a.printJSON(p)
		}
		fmt.Fprintf(a.out, "第 %d/%d 页，共 %d 条\n", p.Page, p.TotalPages, p.TotalCount)
		a.printHistory(p.Data)
		return nil

	case "search":
		if len(args) != 2 {
			return fmt.Errorf("%w: history search needs a keyword", errUsage)
		}
		items, err := a.history.Search(ctx, args[1])
		if err != nil {
			a.logger.Warn("Failed to load history, showing an empty list", slog.Any("error", err))
			items = []*model.HistoryItem{}
		}
		if a.asJSON {
			return a.printJSON(items)
		}
		fmt.Fprintf(a.out, "找到 %d 条\n", len(items))
		a.printHistory(items)
		return nil

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("%w: history delete needs an id", errUsage)
		}
		if err := a.history.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "已删除")
		return nil

	case "clear":
		if err := a.history.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "历史记录已清空")
		return nil

	default:
		return fmt.Errorf("%w: unknown history subcommand %q", errUsage, args[0])
	}
}

func (a *app) printHistory(items []*model.HistoryItem) {
	for _, item := range items {
		fmt.Fprintf(a.out, "\n[%s] %s\n  %s\n  %s\n", item.Timestamp, item.ID, item.Indonesian, item.Chinese)
		if len(item.WordParses) > 0 {
			words := make([]string, 0, len(item.WordParses))
			for _, wp := range item.WordParses {
				words = append(words, wp.Word)
			}
			fmt.Fprintf(a.out, "  单词: %s\n", strings.Join(words, ", "))
		}
	}
}

func (a *app) cardsCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: cards needs a subcommand", errUsage)
	}
	switch args[0] {
	case "list":
		cards, err := a.flashcards.GetAll(ctx)
		if err != nil {
			a.logger.Warn("Failed to load flashcards, showing an empty list", slog.Any("error", err))
			cards = []*model.FlashcardItem{}
		}
		return a.printCards(cards)

	case "review":
		queue, err := a.flashcards.ReviewQueue(ctx)
		if err != nil {
			a.logger.Warn("Failed to load flashcards, showing an empty queue", slog.Any("error", err))
			queue = []*model.FlashcardItem{}
		}
		if len(queue) == 0 && !a.asJSON {
			fmt.Fprintln(a.out, "没有需要复习的单词")
			return nil
		}
		return a.printCards(queue)

	case "status":
		if len(args) != 3 {
			return fmt.Errorf("%w: cards status needs an id and a status", errUsage)
		}
		id, err := parseCardID(args[1])
		if err != nil {
			return err
		}
		status := model.FlashcardStatus(args[2])
		if !status.Valid() {
			return fmt.Errorf("%w: status must be one of not-learned, learning, learned", errUsage)
		}
		if err := a.flashcards.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d -> %s\n", id, status)
		return nil

	case "toggle":
		if len(args) != 2 {
			return fmt.Errorf("%w: cards toggle needs an id", errUsage)
		}
		id, err := parseCardID(args[1])
		if err != nil {
			return err
		}
		status, err := a.flashcards.ToggleLearned(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d -> %s\n", id, status)
		return nil

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("%w: cards delete needs an id", errUsage)
		}
		id, err := parseCardID(args[1])
		if err != nil {
			return err
		}
		if err := a.flashcards.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "已删除")
		return nil

	case "progress":
		progress, err := a.flashcards.GetProgress(ctx)
		if err != nil {
			a.logger.Warn("Failed to load flashcards, showing empty progress", slog.Any("error", err))
			progress = service.ComputeProgress(nil)
		}
		if a.asJSON {
			return a.printJSON(progress)
		}
		fmt.Fprintf(a.out, "总数 %d，已学会 %d，学习中 %d，未学习 %d，掌握 %.0f%%\n",
			progress.Total, progress.Learned, progress.Learning, progress.NotLearned, progress.Percentage)
		return nil

	default:
		return fmt.Errorf("%w: unknown cards subcommand %q", errUsage, args[0])
	}
}

func parseCardID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: card id %q is not a number", errUsage, s)
	}
	return id, nil
}

func (a *app) printCards(cards []*model.FlashcardItem) error {
	if a.asJSON {
		return a.printJSON(cards)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWORD\tMEANING\tSTATUS\tEXAMPLE")
	for _, c := range cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s / %s\n", c.ID, c.Word, c.Meaning, c.Status, c.Example, c.ExampleTranslation)
	}
	return tw.Flush()
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
