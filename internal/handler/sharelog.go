package handler

import (
	"context"

	"github.com/ckpool/ckdb/internal/ckdlog"
	"github.com/ckpool/ckdb/internal/codec"
	"github.com/ckpool/ckdb/internal/entity"
	"github.com/ckpool/ckdb/internal/transfer"
)

// Sharelog multiplexes on the nested "method" field into workinfo,
// shares, or shareerror handling (spec.md §4.G).
func (h *Handlers) Sharelog(ctx context.Context, tm *transfer.Map) string {
	method, err := tm.RequireName("method", 1, transfer.PatternUsername)
	if err != nil {
		return err.Error()
	}

	switch method {
	case "workinfo":
		return h.sharelogWorkInfo(ctx, tm)
	case "shares":
		return h.sharelogShare(ctx, tm)
	case "shareerror":
		return h.sharelogShareError(ctx, tm)
	default:
		return "bad.method"
	}
}

func (h *Handlers) sharelogWorkInfo(ctx context.Context, tm *transfer.Map) string {
	workinfoidText, err := tm.RequireName("workinfoid", 1, transfer.PatternPosInt)
	if err != nil {
		return err.Error()
	}
	workinfoid, decErr := codec.DecodeInt64(workinfoidText)
	if decErr != nil {
		return "failed.invalid workinfoid"
	}
	poolinstance, _ := tm.OptionalName("poolinstance")
	prevhash, _ := tm.OptionalName("prevhash")
	merklehash, _ := tm.OptionalName("merklehash")
	transactiontree, _ := tm.OptionalName("transactiontree")
	coinbase1, _ := tm.OptionalName("coinbase1")
	coinbase2, _ := tm.OptionalName("coinbase2")
	version, _ := tm.OptionalName("version")
	bits, _ := tm.OptionalName("bits")
	ntime, _ := tm.OptionalName("ntime")

	var reward float64
	if rewardText, ok := tm.OptionalName("reward"); ok {
		reward, _ = codec.DecodeDouble(rewardText)
	}

	row := entity.WorkInfo{
		WorkInfoID:      workinfoid,
		PoolInstance:    poolinstance,
		TransactionTree: codec.DecodeBlob(transactiontree),
		MerkleHash:      merklehash,
		PrevHash:        prevhash,
		Coinbase1:       codec.DecodeBlob(coinbase1),
		Coinbase2:       codec.DecodeBlob(coinbase2),
		Version:         version,
		Bits:            bits,
		NTime:           ntime,
		Reward:          reward,
	}

	if _, err := h.State.WorkInfos.Add(ctx, h.State.DB, "sharelog.workinfo", row); err != nil {
		ckdlog.Errorf("handler.Sharelog(workinfo): %v", err)
		return replyBadDBE
	}
	return replyOK
}

func (h *Handlers) sharelogShare(ctx context.Context, tm *transfer.Map) string {
	workinfoid, userid, workername, clientid, ok := shareRefFields(tm)
	if !ok {
		return "failed.invalid workinfoid"
	}

	nonce2, _ := tm.OptionalName("nonce2")
	nonce, _ := tm.OptionalName("nonce")
	enonce1, _ := tm.OptionalName("enonce1")
	errorText, _ := tm.OptionalName("error")

	var diff, sdiff float64
	if v, ok := tm.OptionalName("diff"); ok {
		diff, _ = codec.DecodeDouble(v)
	}
	if v, ok := tm.OptionalName("sdiff"); ok {
		sdiff, _ = codec.DecodeDouble(v)
	}
	var errnum int32
	if v, ok := tm.OptionalName("errn"); ok {
		errnum, _ = codec.DecodeInt32(v)
	}

	row := entity.Share{
		WorkInfoID: workinfoid,
		UserID:     userid,
		WorkerName: workername,
		ClientID:   clientid,
		Enonce1:    enonce1,
		Nonce2:     nonce2,
		Nonce:      nonce,
		Diff:       diff,
		SDiff:      sdiff,
		ErrNum:     errnum,
		ErrorText:  errorText,
	}

	if _, err := h.State.Shares.Add(h.State.WorkInfos, h.State.Workers, row); err != nil {
		return replyBadData
	}
	return replyOK
}

func (h *Handlers) sharelogShareError(ctx context.Context, tm *transfer.Map) string {
	workinfoid, userid, workername, clientid, ok := shareRefFields(tm)
	if !ok {
		return "failed.invalid workinfoid"
	}

	errorText, _ := tm.OptionalName("error")
	var errnum int32
	if v, ok := tm.OptionalName("errn"); ok {
		errnum, _ = codec.DecodeInt32(v)
	}

	row := entity.ShareError{
		WorkInfoID: workinfoid,
		UserID:     userid,
		WorkerName: workername,
		ClientID:   clientid,
		ErrNum:     errnum,
		ErrorText:  errorText,
	}

	if _, err := h.State.ShareErrors.Add(h.State.WorkInfos, h.State.Workers, row); err != nil {
		return replyBadData
	}
	return replyOK
}

// shareRefFields extracts the fields common to shares and shareerrors
// that resolve a share's required workinfo/worker references.
func shareRefFields(tm *transfer.Map) (workinfoid, userid int64, workername string, clientid int64, ok bool) {
	workinfoidText, err := tm.RequireName("workinfoid", 1, transfer.PatternPosInt)
	if err != nil {
		return 0, 0, "", 0, false
	}
	useridText, err := tm.RequireName("userid", 1, transfer.PatternPosInt)
	if err != nil {
		return 0, 0, "", 0, false
	}
	workername, err2 := tm.RequireName("workername", 1, transfer.PatternUsername)
	if err2 != nil {
		return 0, 0, "", 0, false
	}
	clientidText, _ := tm.OptionalName("clientid")

	workinfoid, werr := codec.DecodeInt64(workinfoidText)
	userid, uerr := codec.DecodeInt64(useridText)
	clientid, _ = codec.DecodeInt64(clientidText)
	if werr != nil || uerr != nil {
		return 0, 0, "", 0, false
	}
	return workinfoid, userid, workername, clientid, true
}
