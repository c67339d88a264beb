// cmd/main/main.go
// 演示入口：搭起完整协议栈，跑一遍 vault 生命周期。
// 创建 vault → trustee 入金 → safeDeposit → 提现 → 回放事件日志。
package main

import (
	"flag"
	"math/big"
	"os"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/config"
	"vaultmanager/db"
	"vaultmanager/logs"
	"vaultmanager/manager"
	"vaultmanager/token"
	"vaultmanager/trustee"
	"vaultmanager/utils"
)

var (
	dbPath   = flag.String("db", "./data", "badger 数据目录")
	logLevel = flag.Int("loglevel", logs.LevelInfo, "日志级别 0-5")
)

var (
	mgrAddr     = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	governor    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	trusteeAddr = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	userAddr    = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	tokenAddr   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

func main() {
	flag.Parse()
	logs.SetLevel(*logLevel)

	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		logs.Error("[Main] bad config: %v", err)
		os.Exit(1)
	}

	dbm, err := db.NewManager(*dbPath, cfg)
	if err != nil {
		logs.Error("[Main] failed to open db at %s: %v", *dbPath, err)
		os.Exit(1)
	}
	defer dbm.Close()

	journal := db.NewEventJournal(dbm)
	store := db.NewLedgerStore(dbm)

	mgr, err := manager.New(mgrAddr, governor, cfg)
	if err != nil {
		logs.Error("[Main] failed to create ledger: %v", err)
		os.Exit(1)
	}
	mgr.SetEventSink(journal)
	mgr.SetStore(store)
	mgr.SetContractChecker(func(addr common.Address) bool {
		return addr == trusteeAddr
	})

	if err := mgr.SetTrustee(governor, trusteeAddr); err != nil {
		logs.Error("[Main] failed to set trustee: %v", err)
		os.Exit(1)
	}
	tr := trustee.New(trusteeAddr, mgr)

	// ========== 资产与 vault ==========
	supply := new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1_000_000_000))
	tok := token.New(tokenAddr, "Demo Token", "DEMO", governor, supply)

	vaultID, err := mgr.CreateNewVaultWithRoyalty(governor, tok, governor, 250)
	if err != nil {
		logs.Error("[Main] failed to create vault: %v", err)
		os.Exit(1)
	}
	logs.Info("[Main] created vault %d for %s", vaultID, tokenAddr.Hex())

	// ========== trustee 入金 ==========
	amount := big.NewInt(1_000_000)
	must(tok.Transfer(governor, userAddr, amount))
	must(tok.Approve(userAddr, trusteeAddr, amount))

	if _, err := tr.Deposit(userAddr, tok, amount); err != nil {
		logs.Error("[Main] deposit failed: %v", err)
		os.Exit(1)
	}
	bal, _ := mgr.GetVaultBalanceByVaultId(vaultID)
	logs.Info("[Main] vault %d balance after deposit: %s", vaultID, bal.String())

	// ========== 签名授权入金 ==========
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		logs.Error("[Main] keygen failed: %v", err)
		os.Exit(1)
	}
	depositor := utils.PrivKeyAddress(priv)
	must(tok.Transfer(governor, depositor, amount))
	must(tok.Approve(depositor, trusteeAddr, amount))

	digest := utils.SignedDepositDigest(
		utils.DepositMessageHash(tokenAddr, depositor, amount, mgr.Nonces(depositor)))
	sig := utils.SignDigest(priv, digest)

	if _, err := tr.SafeDeposit(depositor, tok, amount, depositor, sig); err != nil {
		logs.Error("[Main] safe deposit failed: %v", err)
		os.Exit(1)
	}
	bal, _ = mgr.GetVaultBalanceByVaultId(vaultID)
	logs.Info("[Main] vault %d balance after safe deposit: %s (nonce=%d)",
		vaultID, bal.String(), mgr.Nonces(depositor))

	// ========== 提现 ==========
	if err := tr.Withdraw(vaultID, userAddr, amount); err != nil {
		logs.Error("[Main] withdraw failed: %v", err)
		os.Exit(1)
	}
	logs.Info("[Main] withdrew %s to %s, user balance: %s",
		amount.String(), userAddr.Hex(), tok.BalanceOf(userAddr).String())

	// 版税示意
	receiver, royalty, err := mgr.RoyaltyInfo(vaultID, big.NewInt(10_000_000))
	if err == nil {
		logs.Info("[Main] royalty on 10M sale: %s to %s", royalty.String(), receiver.Hex())
	}

	// ========== 事件日志回放 ==========
	if err := dbm.ForceFlush(); err != nil {
		logs.Error("[Main] flush failed: %v", err)
		os.Exit(1)
	}
	events, err := journal.Load()
	if err != nil {
		logs.Error("[Main] failed to load event journal: %v", err)
		os.Exit(1)
	}
	for _, evt := range events {
		logs.Info("[Main] event %s %s at %d", evt.ID, evt.EventType, evt.Timestamp)
	}
	logs.Info("[Main] done: %d vaults, %d events", mgr.TotalVaults(), len(events))
}

func must(err error) {
	if err != nil {
		logs.Error("[Main] %v", err)
		os.Exit(1)
	}
}
