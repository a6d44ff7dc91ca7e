package main

import (
	"errors"
	"fmt"
	"os"

	"feeadmin/internal/api"
	"feeadmin/internal/cli"
	"feeadmin/internal/log"
	"feeadmin/internal/services"
)

func printUsage() {
	fmt.Println("Usage: feeadmin COMMAND [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login      -email EMAIL               log in (password prompted)")
	fmt.Println("  logout                                clear the stored session")
	fmt.Println("  whoami                                show the active session")
	fmt.Println("  years                                 list academic years")
	fmt.Println("  terms      [-year ID]                 list a year's terms")
	fmt.Println("  matrix     [-year ID] [-class ID]     fee matrix; -class drills down")
	fmt.Println("  status     [-year ID]                 fee collection dashboard")
	fmt.Println("  parents    [add|edit -id ID] -first .. -last .. -email .. [-phone ..] [-address ..]")
	fmt.Println("  discounts  [add|enable|disable ...]   manage global discounts")
	fmt.Println("  structures add -class ID -term ID -item NAME=AMOUNT[:annual] ...")
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	ctx := cli.SignalContext()
	client, store := cli.NewClient(cfg, logger)
	roster := services.NewRosterProvider(client)
	matrix := services.NewMatrixService(client, roster, cfg.DetailWorkers, logger)
	status := services.NewStatusService(client, matrix, roster, logger)

	app := &application{
		client: client,
		store:  store,
		matrix: matrix,
		status: status,
		log:    logger,
		out:    os.Stdout,
	}

	err := app.run(ctx, os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errHelp):
		os.Exit(2)
	case errors.Is(err, api.ErrSessionExpired):
		fmt.Fprintln(os.Stderr, "Your session has expired. Run 'feeadmin login' to continue.")
		os.Exit(1)
	default:
		logger.Error("command failed", log.FieldError, err)
		os.Exit(1)
	}
}
