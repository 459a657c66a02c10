package datasource

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"comptes/internal/core"
)

// ViewKind names one query family.
type ViewKind string

const (
	KindAllAccounts           ViewKind = "all-accounts"
	KindTotalBalanceStats     ViewKind = "total-balance-stats"
	KindAccountsByType        ViewKind = "accounts-by-type"
	KindTransactionsByAccount ViewKind = "transactions-by-account"
)

// View identifies one cached query result. Mutations name the views they
// invalidate; AccountsByType with an empty type covers every type.
type View struct {
	Kind    ViewKind
	Account core.AccountID
	Type    core.AccountType
}

func AllAccounts() View {
	return View{Kind: KindAllAccounts}
}

func TotalBalanceStats() View {
	return View{Kind: KindTotalBalanceStats}
}

// AccountsByType names the filtered list for t, or every filtered list when t is empty.
func AccountsByType(t core.AccountType) View {
	return View{Kind: KindAccountsByType, Type: t}
}

func TransactionsByAccount(id core.AccountID) View {
	return View{Kind: KindTransactionsByAccount, Account: id}
}

// Key is the cache key and wire form of the view.
func (v View) Key() string {
	switch v.Kind {
	case KindAccountsByType:
		if v.Type == "" {
			return string(v.Kind)
		}
		return string(v.Kind) + ":" + v.Type.String()
	case KindTransactionsByAccount:
		return string(v.Kind) + ":" + v.Account.String()
	default:
		return string(v.Kind)
	}
}

func (v View) String() string {
	return v.Key()
}

var plainEventID = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// EventSafeID maps an account id to the characters allowed in event and
// element names. Plain ids are kept; any other id is hex encoded behind a
// "_" prefix, which plain ids never contain, so distinct ids never collide.
func EventSafeID(id core.AccountID) string {
	if plainEventID.MatchString(id.String()) {
		return id.String()
	}
	return "_" + hex.EncodeToString([]byte(id.String()))
}

// Event is the browser event that makes the partials showing this view reload.
func (v View) Event() string {
	switch v.Kind {
	case KindAllAccounts:
		return "accounts:refetch"
	case KindTotalBalanceStats:
		return "stats:refetch"
	case KindAccountsByType:
		return "accounts-by-type:refetch"
	case KindTransactionsByAccount:
		return "transactions-" + EventSafeID(v.Account) + ":refetch"
	default:
		return ""
	}
}

// ParseView reads a view back from its Key form.
func ParseView(key string) (View, error) {
	kind, arg, hasArg := strings.Cut(key, ":")
	switch ViewKind(kind) {
	case KindAllAccounts, KindTotalBalanceStats:
		if hasArg {
			return View{}, fmt.Errorf("view %q takes no argument", kind)
		}
		return View{Kind: ViewKind(kind)}, nil
	case KindAccountsByType:
		if !hasArg {
			return AccountsByType(""), nil
		}
		t := core.AccountType(arg)
		if !t.IsValid() {
			return View{}, fmt.Errorf("view %q: %w", key, core.ErrInvalidAccountType)
		}
		return AccountsByType(t), nil
	case KindTransactionsByAccount:
		if arg == "" {
			return View{}, fmt.Errorf("view %q: %w", key, core.ErrEmptyAccountID)
		}
		return TransactionsByAccount(core.AccountID(arg)), nil
	default:
		return View{}, fmt.Errorf("unknown view %q", key)
	}
}

// Keys returns the Key of each view.
func Keys(views []View) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Key()
	}
	return out
}
