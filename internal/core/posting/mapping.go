package posting

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Role names the economic bucket a rule posts to, independent of the account code backing it.
type Role string

const (
	RoleCash               Role = "cash"
	RoleBank               Role = "bank"
	RoleMobileMoney        Role = "mobile_money"
	RoleAccountsReceivable Role = "accounts_receivable"
	RoleInventory          Role = "inventory"
	RoleWorkerLoans        Role = "worker_loans"
	RoleAccountsPayable    Role = "accounts_payable"
	RoleTaxPayable         Role = "tax_payable"
	RoleContractRevenue    Role = "contract_revenue"
	RoleRigFeeRevenue      Role = "rig_fee_revenue"
	RoleMaterialsRevenue   Role = "materials_revenue"
	RoleSalesRevenue       Role = "sales_revenue"
	RoleCOGS               Role = "cogs"
	RoleMaterialsExpense   Role = "materials_expense"
	RoleWagesExpense       Role = "wages_expense"
	RoleOperatingExpense   Role = "operating_expense"
	RoleDiscountExpense    Role = "discount_expense"
	RoleProcessingFees     Role = "processing_fees"
)

// OriginalMethod is the refund method meaning "pay back through the tender the sale was paid with".
const OriginalMethod = "original_method"

// AccountSeed is one chart-of-accounts row created at bootstrap.
type AccountSeed struct {
	Code string             `yaml:"code"`
	Name string             `yaml:"name"`
	Type domain.AccountType `yaml:"type"`
}

// RevenueOverride routes sales revenue to another role by store code.
type RevenueOverride struct {
	StoreCodeContains string `yaml:"store_code_contains"`
	Role              Role   `yaml:"role"`
}

// Mapping is the account-mapping policy consumed by the rule engine.
type Mapping struct {
	Accounts           []AccountSeed     `yaml:"accounts"`
	Roles              map[Role]string   `yaml:"roles"`
	Tenders            map[string]Role   `yaml:"tenders"`
	DefaultTender      Role              `yaml:"default_tender"`
	RevenueOverrides   []RevenueOverride `yaml:"revenue_overrides"`
	ProcessingFeeRates map[string]string `yaml:"processing_fee_rates"`

	feeRates map[string]decimal.Decimal
}

//go:embed default_mapping.yaml
var defaultMappingYAML []byte

// DefaultMapping returns the built-in mapping, including the seed chart of accounts.
func DefaultMapping() *Mapping {
	m, err := ParseMapping(defaultMappingYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded posting mapping is invalid: %v", err))
	}
	return m
}

// LoadMapping reads a mapping file. An empty path yields DefaultMapping.
func LoadMapping(path string) (*Mapping, error) {
	if path == "" {
		return DefaultMapping(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	return ParseMapping(data)
}

// ParseMapping decodes and validates a YAML mapping.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks internal references and prepares lookup tables. Call it again after
// editing a Mapping in place.
func (m *Mapping) Validate() error {
	seen := make(map[string]bool, len(m.Accounts))
	for _, acc := range m.Accounts {
		if acc.Code == "" || acc.Name == "" {
			return errors.New("mapping account requires code and name")
		}
		if !acc.Type.Valid() {
			return fmt.Errorf("mapping account %s has invalid type %q", acc.Code, acc.Type)
		}
		if seen[acc.Code] {
			return fmt.Errorf("mapping account %s declared twice", acc.Code)
		}
		seen[acc.Code] = true
	}

	normalized := make(map[string]Role, len(m.Tenders))
	for method, role := range m.Tenders {
		if _, ok := m.Roles[role]; !ok {
			return fmt.Errorf("tender %q refers to unknown role %q", method, role)
		}
		normalized[normalizeMethod(method)] = role
	}
	m.Tenders = normalized

	if m.DefaultTender == "" {
		return errors.New("mapping requires default_tender")
	}
	if _, ok := m.Roles[m.DefaultTender]; !ok {
		return fmt.Errorf("default_tender refers to unknown role %q", m.DefaultTender)
	}

	for _, o := range m.RevenueOverrides {
		if _, ok := m.Roles[o.Role]; !ok {
			return fmt.Errorf("revenue override %q refers to unknown role %q", o.StoreCodeContains, o.Role)
		}
	}

	m.feeRates = make(map[string]decimal.Decimal, len(m.ProcessingFeeRates))
	for method, raw := range m.ProcessingFeeRates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid processing fee rate for %q: %w", method, err)
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("processing fee rate for %q must be between 0 and 1", method)
		}
		m.feeRates[normalizeMethod(method)] = rate
	}
	return nil
}

// AccountCode returns the code backing role.
func (m *Mapping) AccountCode(role Role) (string, bool) {
	code, ok := m.Roles[role]
	return code, ok && code != ""
}

// TenderRole maps a payment method to its role, falling back to the default tender.
func (m *Mapping) TenderRole(method string) Role {
	if role, ok := m.Tenders[normalizeMethod(method)]; ok {
		return role
	}
	return m.DefaultTender
}

// TenderMethodForAccount returns a payment method whose tender role is backed by code.
// Methods are tried in name order so the answer is stable.
func (m *Mapping) TenderMethodForAccount(code string) (string, bool) {
	methods := make([]string, 0, len(m.Tenders))
	for method, role := range m.Tenders {
		if m.Roles[role] == code {
			methods = append(methods, method)
		}
	}
	if len(methods) == 0 {
		return "", false
	}
	sort.Strings(methods)
	return methods[0], true
}

// RevenueRole picks the revenue role for a store.
func (m *Mapping) RevenueRole(storeCode string) Role {
	lower := strings.ToLower(storeCode)
	for _, o := range m.RevenueOverrides {
		if o.StoreCodeContains != "" && strings.Contains(lower, strings.ToLower(o.StoreCodeContains)) {
			return o.Role
		}
	}
	return RoleSalesRevenue
}

// FeeRate returns the processing fee rate for a payment method, zero when none is configured.
func (m *Mapping) FeeRate(method string) decimal.Decimal {
	if rate, ok := m.feeRates[normalizeMethod(method)]; ok {
		return rate
	}
	return decimal.Zero
}

// SeedAccounts converts the mapping's chart into domain accounts with derived normal balances.
func (m *Mapping) SeedAccounts() []domain.Account {
	accounts := make([]domain.Account, 0, len(m.Accounts))
	for _, seed := range m.Accounts {
		accounts = append(accounts, domain.Account{
			Code:          seed.Code,
			Name:          seed.Name,
			AccountType:   seed.Type,
			NormalBalance: domain.NormalBalanceFor(seed.Type),
			IsActive:      true,
		})
	}
	return accounts
}

func normalizeMethod(method string) string {
	return strings.ToLower(strings.TrimSpace(method))
}
