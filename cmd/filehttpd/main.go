package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/kianooshaz/filehttpd/server"
)

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		// stop handling the signals. This restores the default go behaviour (exit) in case of a second signal
		stop()
	}()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "filehttpd:", err)
		if errors.As(err, new(usageError)) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("filehttpd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: filehttpd [flags] <port>")
		fs.PrintDefaults()
	}

	host := fs.String("host", "0.0.0.0", "IPv4 address to bind.")
	root := fs.String("root", ".", "Directory requested paths are resolved against.")
	pollInterval := fs.Duration("poll-interval", time.Second, "How often the accept loop checks for shutdown.")
	readTimeout := fs.Duration("read-timeout", 0, "Maximum time to receive request headers (0 = no limit).")
	rejectMalformed := fs.Bool("reject-malformed", false, "Answer malformed requests with 400 Bad Request.")
	confine := fs.Bool("confine", false, "Refuse paths that resolve outside -root.")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn or error.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return usageError{msg: "exactly one <port> argument is required"}
	}
	port, err := parsePort(fs.Arg(0))
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return usageError{msg: fmt.Sprintf("invalid -log-level %q", *logLevel)}
	}
	logger := slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: level}))
	logger.Info("server is starting...")

	s := &server.Server{
		Addr:            net.JoinHostPort(*host, strconv.Itoa(port)),
		Root:            *root,
		PollInterval:    *pollInterval,
		ReadTimeout:     *readTimeout,
		RejectMalformed: *rejectMalformed,
		Confine:         *confine,
		Logger:          logger,
	}
	if err := s.ListenAndServe(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, usageError{msg: fmt.Sprintf("invalid port number %q", s)}
	}
	if port < 0 || port > 65535 {
		return 0, usageError{msg: fmt.Sprintf("port %d out of range", port)}
	}
	return port, nil
}
