// Command routine is an interactive terminal client for the routine builder:
// browse the catalog, curate a selection, generate a routine through the
// gateway and ask follow-up questions.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/fatih/color"

	"routine-builder/internal/catalog"
	"routine-builder/internal/domain"
	"routine-builder/internal/integrations/gateway"
	"routine-builder/internal/repository"
	"routine-builder/internal/selection"
	"routine-builder/internal/usecase"
)

var (
	gatewayURL   = flag.String("gateway", "", "Routine gateway endpoint URL (required)")
	catalogWhere = flag.String("catalog", "products.json", "Catalog document: a local path or an http(s) URL")
	catalogTable = flag.String("table", "", "DynamoDB catalog table name (overrides -catalog)")
)

func main() {
	flag.Parse()

	if strings.TrimSpace(*gatewayURL) == "" {
		fmt.Fprintln(os.Stderr, "missing required -gateway flag")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nBye!")
		cancel()
		os.Exit(0)
	}()

	source, err := newCatalogSource(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog setup failed: %v\n", err)
		os.Exit(1)
	}

	gw, err := gateway.NewClient(*gatewayURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gateway setup failed: %v\n", err)
		os.Exit(1)
	}

	svc, err := usecase.NewRoutineService(gw, selection.NewStore())
	if err != nil {
		fmt.Fprintf(os.Stderr, "session setup failed: %v\n", err)
		os.Exit(1)
	}

	runREPL(ctx, source, svc)
}

func newCatalogSource(ctx context.Context) (catalog.Source, error) {
	if strings.TrimSpace(*catalogTable) != "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return repository.New(awsdynamodb.NewFromConfig(cfg), *catalogTable)
	}
	if strings.HasPrefix(*catalogWhere, "http://") || strings.HasPrefix(*catalogWhere, "https://") {
		return catalog.NewHTTPSource(*catalogWhere)
	}
	return catalog.NewFileSource(*catalogWhere)
}

func runREPL(ctx context.Context, source catalog.Source, svc *usecase.RoutineService) {
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Println(boldGreen("Routine Builder"))
	fmt.Println("Type 'help' for commands. Anything else is sent as a chat message.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("> "))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest := splitCommand(line)
		switch cmd {
		case "exit", "quit":
			return

		case "help":
			printHelp()

		case "categories":
			products, err := loadCatalog(ctx, source)
			if err != nil {
				fmt.Println(red(err.Error()))
				continue
			}
			for _, c := range catalog.Categories(products) {
				fmt.Println("  " + c)
			}

		case "list":
			category, query := splitCommand(rest)
			products, err := loadCatalog(ctx, source)
			if err != nil {
				fmt.Println(red(err.Error()))
				continue
			}
			matched := catalog.Filter(products, category, query)
			if len(matched) == 0 {
				fmt.Println(yellow("No products match."))
				continue
			}
			for _, p := range matched {
				marker := " "
				if svc.Selection().Contains(p.ID) {
					marker = "*"
				}
				fmt.Printf("%s %-6s %s (%s, %s)\n", marker, p.ID, p.Name, p.Brand, p.Category)
			}

		case "show":
			products, err := loadCatalog(ctx, source)
			if err != nil {
				fmt.Println(red(err.Error()))
				continue
			}
			p, ok := findProduct(products, rest)
			if !ok {
				fmt.Println(yellow("No such product: " + rest))
				continue
			}
			fmt.Printf("%s (%s, %s)\n%s\n", p.Name, p.Brand, p.Category, p.Description)

		case "pick":
			products, err := loadCatalog(ctx, source)
			if err != nil {
				fmt.Println(red(err.Error()))
				continue
			}
			p, ok := findProduct(products, rest)
			if !ok {
				fmt.Println(yellow("No such product: " + rest))
				continue
			}
			if svc.Selection().Toggle(p.ID, p.Name) {
				fmt.Println("Added " + p.Name)
			} else {
				fmt.Println("Removed " + p.Name)
			}

		case "drop":
			svc.Selection().Remove(strings.TrimSpace(rest))
			printSelection(svc, yellow)

		case "selected":
			printSelection(svc, yellow)

		case "routine":
			fmt.Println(yellow("Generating routine..."))
			routine, err := svc.GenerateRoutine(ctx)
			if err != nil {
				fmt.Println(red(friendlyError(err)))
				continue
			}
			fmt.Println(boldCyan("Assistant: ") + routine)

		default:
			reply, err := svc.SendFollowUp(ctx, line)
			if err != nil {
				fmt.Println(red(friendlyError(err)))
				continue
			}
			fmt.Println(boldCyan("Assistant: ") + reply)
		}
		fmt.Println()
	}
}

func loadCatalog(ctx context.Context, source catalog.Source) ([]domain.Product, error) {
	products, err := source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load the catalog: %w", err)
	}
	return products, nil
}

func findProduct(products []domain.Product, id string) (domain.Product, bool) {
	id = strings.TrimSpace(id)
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func printSelection(svc *usecase.RoutineService, yellow func(...interface{}) string) {
	selected := svc.Selection().Selected()
	if len(selected) == 0 {
		fmt.Println(yellow("Nothing selected yet."))
		return
	}
	for _, p := range selected {
		fmt.Printf("  %-6s %s\n", p.ID, p.Name)
	}
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

// friendlyError turns a session error into the inline sentence shown to the
// user. Failures never end the session.
func friendlyError(err error) string {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		switch ucErr.Code {
		case usecase.ErrorEmptySelection:
			return "Please select at least one product to generate a routine."
		case usecase.ErrorEmptyInput:
			return "Type a question first."
		case usecase.ErrorRequestInFlight:
			return "A request is already running. Please wait for it to finish."
		case usecase.ErrorUnexpectedResponse:
			return "The gateway returned an unexpected response. Please try again later."
		}
	}
	return "There was an error processing your request. Please try again later."
}

func printHelp() {
	fmt.Println(`Commands:
  categories           list catalog categories
  list [category] [q]  list products, optionally filtered
  show <id>            show a product's description
  pick <id>            toggle a product in the selection
  drop <id>            remove a product from the selection
  selected             show the current selection
  routine              generate a routine for the selection
  exit                 quit

Anything else is sent to the assistant as a follow-up question.`)
}
