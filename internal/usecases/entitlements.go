package usecases

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"plumise.backend/internal/config"
	"plumise.backend/internal/domain/entities"
)

// NormalizeAddress trims and checksums an Ethereum address. Returns "" for
// anything that is not a valid hex address.
func NormalizeAddress(address string) string {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" || !common.IsHexAddress(trimmed) {
		return ""
	}
	return common.HexToAddress(trimmed).Hex()
}

// EntitlementResolver maps wallet addresses to a billing mode using the
// agent-free allowlist. The allowlist is parsed lazily and cached keyed by
// the raw configuration string, so a config change takes effect on the next
// call without a restart.
type EntitlementResolver struct {
	source func() string

	mu          sync.Mutex
	cachedRaw   string
	cachedSet   map[string]struct{}
	initialized bool
}

// NewEntitlementResolver creates a resolver reading the allowlist from the
// environment. A custom source can be injected for tests.
func NewEntitlementResolver(source func() string) *EntitlementResolver {
	if source == nil {
		source = config.AgentFreeWalletsSource
	}
	return &EntitlementResolver{source: source}
}

// Resolve computes the entitlement for a user's stored wallet address.
func (r *EntitlementResolver) Resolve(storedAddress string) *entities.WalletEntitlement {
	wallet := NormalizeAddress(storedAddress)
	isAgentFree := wallet != "" && r.IsAgentFreeWallet(wallet)

	mode := entities.BillingModePaid
	if isAgentFree {
		mode = entities.BillingModeAgentFree
	}
	return &entities.WalletEntitlement{
		WalletAddress: wallet,
		IsAgentFree:   isAgentFree,
		BillingMode:   mode,
	}
}

// IsAgentFreeWallet reports whether the address is on the allowlist.
func (r *EntitlementResolver) IsAgentFreeWallet(address string) bool {
	normalized := NormalizeAddress(address)
	if normalized == "" {
		return false
	}
	_, ok := r.allowlist()[normalized]
	return ok
}

// HasAgentFreeConfig reports whether any allowlist entries are configured.
func (r *EntitlementResolver) HasAgentFreeConfig() bool {
	return len(r.allowlist()) > 0
}

func (r *EntitlementResolver) allowlist() map[string]struct{} {
	raw := strings.TrimSpace(r.source())

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized && raw == r.cachedRaw {
		return r.cachedSet
	}

	set := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		if normalized := NormalizeAddress(part); normalized != "" {
			set[normalized] = struct{}{}
		}
	}

	r.cachedRaw = raw
	r.cachedSet = set
	r.initialized = true
	return set
}
