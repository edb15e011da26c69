package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shu8h0-null/minledger/core/api"
	blkchn "github.com/shu8h0-null/minledger/core/blockchain"
	"github.com/shu8h0-null/minledger/core/config"
	"github.com/shu8h0-null/minledger/core/logger"
	"github.com/shu8h0-null/minledger/core/rpc"
)

const (
	shutdownTimeout = 5 * time.Second
	eventBuffer     = 16
	eventSubscriber = "node"
)

var log = logger.NewLogger()

// Node owns a single ledger and serves it over HTTP and JSON-RPC on one
// listener.
type Node struct {
	cfg     config.Config
	ledger  *blkchn.Ledger
	archive *blkchn.BoltArchive
	server  *http.Server
}

func NewNode(cfg config.Config) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Invalid config: %w", err)
	}

	opts := []blkchn.Option{
		blkchn.WithDifficulty(cfg.Difficulty),
		blkchn.WithMiningReward(cfg.MiningReward),
	}

	var archive *blkchn.BoltArchive
	if cfg.ArchiveDir != "" {
		var err error
		archive, err = blkchn.OpenArchive(cfg.ArchiveDir)
		if err != nil {
			return nil, fmt.Errorf("Could not open block archive: %w", err)
		}
		opts = append(opts, blkchn.WithArchive(archive))
	}

	ledger, err := blkchn.NewLedger(opts...)
	if err != nil {
		closeArchive(archive)
		return nil, fmt.Errorf("Error creating ledger: %w", err)
	}

	return &Node{
		cfg:     cfg,
		ledger:  ledger,
		archive: archive,
		server: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: newHandler(ledger, cfg.StrictAddresses),
		},
	}, nil
}

// newHandler mounts the JSON-RPC endpoint onto the HTTP API router.
func newHandler(ledger *blkchn.Ledger, strictAddresses bool) http.Handler {
	apiServer := api.NewServer(ledger, strictAddresses)
	apiServer.Router().Handle(rpc.Path, rpc.NewServer(rpc.NewRPCHandler(ledger, strictAddresses)))
	return apiServer
}

func (n *Node) Ledger() *blkchn.Ledger {
	return n.ledger
}

// Run serves until ctx is cancelled or the process receives SIGINT/SIGTERM,
// then shuts the listener down and closes the archive.
func (n *Node) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", n.cfg.HTTPAddr)
	if err != nil {
		n.shutdownArchive()
		return fmt.Errorf("Failed to listen on %s: %w", n.cfg.HTTPAddr, err)
	}
	return n.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (n *Node) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listenForQuitSignal(ctx, cancel)
	go n.logSealedBlocks(ctx)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- n.server.Serve(ln)
	}()
	log.Infof("Node started at http://%s (difficulty %d, reward %s)\n", ln.Addr(), n.ledger.Difficulty(), n.ledger.MiningReward())
	log.Infof("JSON-RPC available at http://%s%s\n", ln.Addr(), rpc.Path)
	log.Infof("Chain tip Block:[%d]:[%s]\n", n.ledger.Height(), n.ledger.Tip().Hash)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("Error serving http: %w", err)
		}
	}

	log.Info("Cleaning Up...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := n.server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down http server: %v\n", err)
	}
	if err := n.shutdownArchive(); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}

// shutdownArchive detaches the archive from the ledger before closing it, so a
// seal still running after the shutdown timeout finishes its journal write
// first.
func (n *Node) shutdownArchive() error {
	if n.archive == nil {
		return nil
	}
	n.ledger.DetachArchive()

	if blocks, err := n.archive.Blocks(); err != nil {
		log.Errorf("Error reading archive: %v\n", err)
	} else {
		log.Infof("Archive holds %d block(s)\n", len(blocks))
	}
	return closeArchive(n.archive)
}

func (n *Node) logSealedBlocks(ctx context.Context) {
	events := make(chan blkchn.BlockSealedEvent, eventBuffer)
	if err := n.ledger.Events().Subscribe(eventSubscriber, events); err != nil {
		log.Errorf("Error subscribing to ledger events: %v\n", err)
		return
	}
	defer n.ledger.Events().Unsubscribe(eventSubscriber)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			log.Infof("Block:[%d]:[%s] appended with %d transaction(s)\n", ev.Height, ev.Hash, ev.Transactions)
		}
	}
}

func closeArchive(archive *blkchn.BoltArchive) error {
	if archive == nil {
		return nil
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("Error closing archive: %w", err)
	}
	return nil
}

func listenForQuitSignal(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			log.Infof("Received signal: %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
}
