package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/intmax-network/go-rollup-wallet/aggregator"
	"github.com/intmax-network/go-rollup-wallet/db/badgerdb"
	"github.com/intmax-network/go-rollup-wallet/service"
	"github.com/intmax-network/go-rollup-wallet/smt"
	"github.com/intmax-network/go-rollup-wallet/types"
	"github.com/intmax-network/go-rollup-wallet/wallet"
)

var (
	configDir     = flag.String("config", "", "Config directory (default $HOME/.intmax)")
	treeDbDir     = flag.String("treedb", "", "Tree DB directory (in-memory when empty)")
	aggregatorURL = flag.String("aggregator", "", "Aggregator URL override")
)

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: colorable.NewColorableStderr()}).
		With().Timestamp().Logger()

	if err := run(flag.Args()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: intmax-wallet <account|deposit|assets|tx|block|config> ...")
	}

	dir := *configDir
	if dir == "" {
		var err error
		dir, err = service.DefaultConfigDir()
		if err != nil {
			return err
		}
	}

	viper.AddConfigPath(dir)
	viper.SetConfigName("parameters")
	viper.MergeInConfig()

	config, err := service.LoadConfig(service.ConfigPath(dir))
	if err != nil {
		return err
	}
	if url := viper.GetString("aggregator_url"); url != "" {
		config.AggregatorURL = url
	}
	if *aggregatorURL != "" {
		config.AggregatorURL = *aggregatorURL
	}

	if args[0] == "config" {
		if len(args) != 3 || args[1] != "aggregator-url" {
			return fmt.Errorf("usage: intmax-wallet config aggregator-url <url>")
		}
		config.AggregatorURL = args[2]
		return service.SaveConfig(service.ConfigPath(dir), config)
	}

	constants, err := types.LoadRollupConstants(filepath.Join(dir, "constants.yaml"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := aggregator.NewClient(config.AggregatorURL)
	if err := client.CheckCompatibility(ctx); err != nil {
		return err
	}
	svc := service.New(client, constants)

	walletPath, err := service.WalletPath(dir, config.AggregatorURL)
	if err != nil {
		return err
	}
	w, err := openWallet(walletPath)
	if err != nil {
		return err
	}

	if err := dispatch(ctx, svc, client, w, args); err != nil {
		return err
	}
	return w.Save(walletPath)
}

func openWallet(walletPath string) (*wallet.Wallet, error) {
	if _, err := os.Stat(walletPath); err == nil {
		return wallet.Load(walletPath)
	}
	if *treeDbDir != "" {
		database, err := badgerdb.NewDB(*treeDbDir)
		if err != nil {
			return nil, err
		}
		store, err := smt.NewNodeStore(database)
		if err != nil {
			return nil, err
		}
		return wallet.NewWithStore(store), nil
	}
	return wallet.New()
}

func dispatch(ctx context.Context, svc *service.Service, client *aggregator.Client, w *wallet.Wallet, args []string) error {
	switch args[0] {
	case "account":
		return runAccount(ctx, client, w, args[1:])
	case "deposit":
		return runDeposit(ctx, svc, w, args[1:])
	case "assets":
		return runAssets(w)
	case "tx":
		return runTx(ctx, svc, w, args[1:])
	case "block":
		return runBlock(ctx, svc, w, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runAccount(ctx context.Context, client *aggregator.Client, w *wallet.Wallet, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: intmax-wallet account <add|list|set-default> ...")
	}
	switch args[0] {
	case "add":
		var account wallet.Account
		if len(args) > 1 {
			account = wallet.AccountFromSeed(args[1])
		} else {
			var err error
			account, err = wallet.NewAccount()
			if err != nil {
				return err
			}
		}
		state := w.AddAccount(account)
		if _, err := client.RegisterAccount(ctx, account.PublicKey); err != nil {
			return err
		}
		if len(w.Data) == 1 {
			w.SetDefaultAccount(&account.Address)
		}
		fmt.Println(state.Account.Address.Hex())
		return nil
	case "list":
		for address := range w.Data {
			marker := " "
			if w.DefaultAccount != nil && *w.DefaultAccount == address {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, address.Hex())
		}
		return nil
	case "set-default":
		if len(args) != 2 {
			return fmt.Errorf("usage: intmax-wallet account set-default <address>")
		}
		address, err := types.HexToAddress(args[1])
		if err != nil {
			return err
		}
		if _, err := w.ResolveAccount(&address); err != nil {
			return err
		}
		w.SetDefaultAccount(&address)
		return nil
	default:
		return fmt.Errorf("unknown account command %q", args[0])
	}
}

func runDeposit(ctx context.Context, svc *service.Service, w *wallet.Wallet, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: intmax-wallet deposit <amount> [variable-index]")
	}
	state, err := w.ResolveAccount(nil)
	if err != nil {
		return err
	}
	amount, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return err
	}
	var index uint64
	if len(args) == 2 {
		index, err = strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			return err
		}
	}
	return svc.DepositAssets(ctx, state, []types.ContributedAsset{{
		ReceiverAddress: state.Account.Address,
		Kind: types.TokenKind{
			ContractAddress: state.Account.Address,
			VariableIndex:   types.VariableIndex(index),
		},
		Amount: amount,
	}})
}

func runAssets(w *wallet.Wallet) error {
	state, err := w.ResolveAccount(nil)
	if err != nil {
		return err
	}
	for kind, total := range state.Assets.TotalByKind() {
		fmt.Printf("%s#%d: %s\n", kind.ContractAddress.Hex(), kind.VariableIndex, total.String())
	}
	fmt.Printf("%d fragments, %d pending merges\n",
		state.Assets.Len(), len(state.RestReceivedAssets))
	return nil
}

func runTx(ctx context.Context, svc *service.Service, w *wallet.Wallet, args []string) error {
	state, err := w.ResolveAccount(nil)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: intmax-wallet tx <send|merge> ...")
	}
	switch args[0] {
	case "send":
		if len(args) != 5 {
			return fmt.Errorf("usage: intmax-wallet tx send <receiver> <contract> <variable-index> <amount>")
		}
		receiver, err := types.HexToAddress(args[1])
		if err != nil {
			return err
		}
		contract, err := types.HexToAddress(args[2])
		if err != nil {
			return err
		}
		index, err := strconv.ParseUint(args[3], 10, 8)
		if err != nil {
			return err
		}
		amount, err := strconv.ParseUint(args[4], 10, 64)
		if err != nil {
			return err
		}
		txHash, err := svc.Transfer(ctx, state, []types.ContributedAsset{{
			ReceiverAddress: receiver,
			Kind: types.TokenKind{
				ContractAddress: contract,
				VariableIndex:   types.VariableIndex(index),
			},
			Amount: amount,
		}})
		if err != nil {
			return err
		}
		fmt.Println(txHash.Hex())
		return nil
	case "merge":
		if err := svc.SyncSentTransactions(ctx, state); err != nil {
			return err
		}
		return svc.MergeRecursively(ctx, state)
	default:
		return fmt.Errorf("unknown tx command %q", args[0])
	}
}

func runBlock(ctx context.Context, svc *service.Service, w *wallet.Wallet, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: intmax-wallet block <propose|sign|approve>")
	}
	switch args[0] {
	case "propose":
		root, err := svc.ProposeBlock(ctx)
		if err != nil {
			return err
		}
		fmt.Println(root.Hex())
		return nil
	case "sign":
		state, err := w.ResolveAccount(nil)
		if err != nil {
			return err
		}
		return svc.SignProposedBlock(ctx, state)
	case "approve":
		block, err := svc.ApproveBlock(ctx)
		if err != nil {
			return err
		}
		fmt.Println(block.Header.BlockNumber)
		return nil
	default:
		return fmt.Errorf("unknown block command %q", args[0])
	}
}
