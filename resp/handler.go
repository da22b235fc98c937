package resp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/redcon"

	"github.com/unkn0wn-root/bpcache/store"
)

// command is a parsed request with an upper-cased name.
type command struct {
	name string
	args [][]byte
}

func parseCommand(cmd redcon.Command) command {
	return command{name: strings.ToUpper(string(cmd.Args[0])), args: cmd.Args[1:]}
}

// reply mirrors what a real Redis server answers for the supported commands.
type reply struct {
	closeConn bool // close the connection after writing
	null      bool
	err       string
	integer   *int64
	status    string
	bulk      []byte
	isBulk    bool
	array     []string
	isArray   bool
}

func statusReply(s string) reply      { return reply{status: s} }
func nullReply() reply                { return reply{null: true} }
func intReply(n int64) reply          { return reply{integer: &n} }
func bulkReply(b []byte) reply        { return reply{bulk: b, isBulk: true} }
func arrayReply(items []string) reply { return reply{array: items, isArray: true} }

func errReply(format string, args ...any) reply {
	return reply{err: "ERR " + fmt.Sprintf(format, args...)}
}

func arityErr(name string) reply {
	return errReply("wrong number of arguments for '%s' command", strings.ToLower(name))
}

func (r reply) write(conn redcon.Conn) {
	switch {
	case r.err != "":
		conn.WriteError(r.err)
	case r.null:
		conn.WriteNull()
	case r.integer != nil:
		conn.WriteInt64(*r.integer)
	case r.isBulk:
		conn.WriteBulk(r.bulk)
	case r.isArray:
		conn.WriteArray(len(r.array))
		for _, s := range r.array {
			conn.WriteBulkString(s)
		}
	default:
		conn.WriteString(r.status)
	}
}

type handler struct {
	store store.Store
}

func (h *handler) handle(ctx context.Context, cmd command) reply {
	switch cmd.name {
	case "PING":
		switch len(cmd.args) {
		case 0:
			return statusReply("PONG")
		case 1:
			return bulkReply(cmd.args[0])
		}
		return arityErr(cmd.name)
	case "ECHO":
		if len(cmd.args) != 1 {
			return arityErr(cmd.name)
		}
		return bulkReply(cmd.args[0])
	case "QUIT":
		return reply{status: "OK", closeConn: true}
	case "GET":
		if len(cmd.args) != 1 {
			return arityErr(cmd.name)
		}
		v, ok, err := h.store.Get(ctx, string(cmd.args[0]))
		if err != nil {
			return errReply("%v", err)
		}
		if !ok {
			return nullReply()
		}
		return bulkReply(v)
	case "SET":
		return h.set(ctx, cmd)
	case "SETEX":
		if len(cmd.args) != 3 {
			return arityErr(cmd.name)
		}
		ttl, err := strconv.ParseInt(string(cmd.args[1]), 10, 64)
		if err != nil {
			return errReply("value is not an integer or out of range")
		}
		return h.setEx(ctx, "setex", string(cmd.args[0]), ttl, cmd.args[2])
	case "TTL":
		if len(cmd.args) != 1 {
			return arityErr(cmd.name)
		}
		ttl, err := h.store.TTL(ctx, string(cmd.args[0]))
		if err != nil {
			return errReply("%v", err)
		}
		return intReply(ttl)
	case "EXISTS":
		if len(cmd.args) < 1 {
			return arityErr(cmd.name)
		}
		n, err := h.store.Exists(ctx, strArgs(cmd.args)...)
		if err != nil {
			return errReply("%v", err)
		}
		return intReply(n)
	case "DEL":
		if len(cmd.args) < 1 {
			return arityErr(cmd.name)
		}
		n, err := h.store.Del(ctx, strArgs(cmd.args)...)
		if err != nil {
			return errReply("%v", err)
		}
		return intReply(n)
	case "KEYS":
		if len(cmd.args) != 1 {
			return arityErr(cmd.name)
		}
		keys, err := h.store.Keys(ctx, string(cmd.args[0]))
		if err != nil {
			return errReply("%v", err)
		}
		return arrayReply(keys)
	default:
		return errReply("unknown command '%s'", strings.ToLower(cmd.name))
	}
}

// set handles SET key value [EX seconds].
func (h *handler) set(ctx context.Context, cmd command) reply {
	switch len(cmd.args) {
	case 2:
		ok, err := h.store.Set(ctx, string(cmd.args[0]), cmd.args[1])
		if err != nil {
			return errReply("%v", err)
		}
		if !ok {
			return nullReply()
		}
		return statusReply("OK")
	case 4:
		if !strings.EqualFold(string(cmd.args[2]), "EX") {
			return errReply("syntax error")
		}
		ttl, err := strconv.ParseInt(string(cmd.args[3]), 10, 64)
		if err != nil {
			return errReply("value is not an integer or out of range")
		}
		return h.setEx(ctx, "set", string(cmd.args[0]), ttl, cmd.args[1])
	case 0, 1:
		return arityErr(cmd.name)
	}
	return errReply("syntax error")
}

func (h *handler) setEx(ctx context.Context, name, key string, ttl int64, value []byte) reply {
	if ttl <= 0 {
		return errReply("invalid expire time in '%s' command", name)
	}
	ok, err := h.store.SetEx(ctx, key, ttl, value)
	if errors.Is(err, store.ErrInvalidExpire) {
		return errReply("invalid expire time in '%s' command", name)
	}
	if err != nil {
		return errReply("%v", err)
	}
	if !ok {
		return nullReply()
	}
	return statusReply("OK")
}

func strArgs(args [][]byte) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = string(a)
	}
	return out
}
