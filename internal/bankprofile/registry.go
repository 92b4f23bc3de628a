package bankprofile

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"fmoura/extrato-csv/internal/parsererror"
)

// GenericID is the explicit, user-selectable fallback profile for statement
// formats not in the registry. It is never selected automatically.
const GenericID = "generic"

// Common Portuguese banking vocabulary shared by every built-in profile.
var (
	baseCreditKeywords = []string{
		"crédito", "credito", "entrada", "depósito", "deposito",
		"transferência recebida", "pix recebido", "ted recebida",
		"doc recebido", "salário", "salario", "rendimento",
		"recebimento", "estorno", "cashback", "devolução",
	}
	baseDebitKeywords = []string{
		"débito", "debito", "saída", "saida", "saque", "pagamento",
		"transferência enviada", "pix enviado", "ted enviada",
		"doc enviado", "compra", "taxa", "tarifa", "fatura",
		"boleto", "juros", "multa", "anuidade",
	}
)

// Registry maps bank identifiers to immutable profiles. Lookup of an
// unregistered identifier is an error, never a silent generic fallback.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry builds the registry with all built-in Brazilian bank profiles
// plus the explicit generic profile.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*Profile)}
	for _, p := range builtinProfiles() {
		r.register(p)
	}
	return r
}

func (r *Registry) register(p *Profile) {
	p.CreditKeywords = foldAll(p.CreditKeywords)
	p.DebitKeywords = foldAll(p.DebitKeywords)
	if len(p.DatePatterns) == 0 {
		p.DatePatterns = brlDatePatterns()
	}
	if p.ValuePattern == nil {
		p.ValuePattern = brlValuePattern
	}
	r.profiles[p.ID] = p
}

// Get returns the profile for a bank identifier or an UnknownBankError.
func (r *Registry) Get(id string) (*Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, &parsererror.UnknownBankError{
			Identifier: id,
			Available:  r.IDs(),
		}
	}
	return p, nil
}

// IDs returns all registered identifiers, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns all registered profiles ordered by identifier.
func (r *Registry) All() []*Profile {
	out := make([]*Profile, 0, len(r.profiles))
	for _, id := range r.IDs() {
		out = append(out, r.profiles[id])
	}
	return out
}

// AnyDateMatch reports whether any registered profile's date patterns match
// the text. The extraction plausibility check uses this: text with at least
// one recognizable date from any bank is considered real statement content.
func (r *Registry) AnyDateMatch(text string) bool {
	for _, p := range r.profiles {
		for _, dp := range p.DatePatterns {
			if dp.Regexp.MatchString(text) {
				return true
			}
		}
	}
	return false
}

// profileSpec is the YAML shape of a user-supplied bank profile.
type profileSpec struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Code           string   `yaml:"code"`
	CreditKeywords []string `yaml:"credit_keywords"`
	DebitKeywords  []string `yaml:"debit_keywords"`
	ValuePattern   string   `yaml:"value_pattern"`
}

type overridesFile struct {
	Banks []profileSpec `yaml:"banks"`
}

// LoadOverrides reads a banks.yaml file and registers (or replaces) the
// profiles it declares. Omitted pattern fields fall back to the standard
// Brazilian set, so a minimal entry only needs id, name, and keywords.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied config path
	if err != nil {
		return fmt.Errorf("reading bank overrides: %w", err)
	}

	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing bank overrides: %w", err)
	}

	for _, spec := range file.Banks {
		if spec.ID == "" {
			return fmt.Errorf("bank override entry missing id")
		}
		p := &Profile{
			ID:             spec.ID,
			Name:           spec.Name,
			Code:           spec.Code,
			CreditKeywords: append([]string{}, baseCreditKeywords...),
			DebitKeywords:  append([]string{}, baseDebitKeywords...),
		}
		p.CreditKeywords = append(p.CreditKeywords, spec.CreditKeywords...)
		p.DebitKeywords = append(p.DebitKeywords, spec.DebitKeywords...)
		if spec.ValuePattern != "" {
			re, err := regexp.Compile(spec.ValuePattern)
			if err != nil {
				return fmt.Errorf("bank override '%s': invalid value pattern: %w", spec.ID, err)
			}
			p.ValuePattern = re
		}
		r.register(p)
	}
	return nil
}

func builtinProfiles() []*Profile {
	return []*Profile{
		{
			ID:             GenericID,
			Name:           "Genérico",
			Code:           "000",
			CreditKeywords: baseCreditKeywords,
			DebitKeywords:  baseDebitKeywords,
		},
		{
			ID:   "santander",
			Name: "Banco Santander",
			Code: "033",
			CreditKeywords: append([]string{
				"credito automatico", "credito em conta", "liquidacao automatica",
				"remuneracao", "rendimento poupanca", "rendimento cdb",
				"credito salario", "deposito identificado",
				"pix transferencia recebida", "santander pay recebido",
				"way recebido", "estorno credito", "devolucao credito",
			}, baseCreditKeywords...),
			DebitKeywords: append([]string{
				"debito automatico", "debito em conta", "saque terminal",
				"pix transferencia enviada", "santander pay enviado",
				"way enviado", "tarifa santander", "anuidade cartao",
				"iof", "fatura cartao", "cheque compensado",
				"tarifa ted", "tarifa doc", "tarifa pix",
			}, baseDebitKeywords...),
		},
		{
			ID:   "itau",
			Name: "Banco Itaú",
			Code: "341",
			CreditKeywords: append([]string{
				"sispag recebido", "resgate aplicacao", "rendimento itau",
				"ted recebida itau", "credito liquidacao",
			}, baseCreditKeywords...),
			DebitKeywords: append([]string{
				"sispag enviado", "aplicacao financeira", "itaucard",
				"tarifa mensalidade", "debito automatico itau",
			}, baseDebitKeywords...),
		},
		{
			ID:   "bradesco",
			Name: "Banco Bradesco",
			Code: "237",
			CreditKeywords: append([]string{
				"credito em c/c", "liquidacao cobranca", "resgate invest facil",
			}, baseCreditKeywords...),
			DebitKeywords: append([]string{
				"debito em c/c", "aplicacao invest facil", "cesta de servicos",
				"bradesco celular",
			}, baseDebitKeywords...),
		},
		{
			ID:   "bb",
			Name: "Banco do Brasil",
			Code: "001",
			CreditKeywords: append([]string{
				"deposito online", "bb rende facil", "ourocap resgate",
				"credito beneficio",
			}, baseCreditKeywords...),
			DebitKeywords: append([]string{
				"bb rende aplicacao", "ourocard", "pacote de servicos",
				"cobranca de titulo",
			}, baseDebitKeywords...),
		},
		{
			ID:   "caixa",
			Name: "Caixa Econômica Federal",
			Code: "104",
			CreditKeywords: append([]string{
				"credito fgts", "beneficio social", "deposito poupanca caixa",
			}, baseCreditKeywords...),
			DebitKeywords: append([]string{
				"saque lotérica", "saque loterica", "prestacao habitacional",
			}, baseDebitKeywords...),
		},
		{
			ID:   "nubank",
			Name: "Nubank",
			Code: "260",
			CreditKeywords: append([]string{
				"transferência recebida pelo pix", "resgate rdb",
				"dinheiro guardado resgatado",
			}, baseCreditKeywords...),
			DebitKeywords: append([]string{
				"transferência enviada pelo pix", "aplicacao rdb",
				"dinheiro guardado", "pagamento de fatura",
			}, baseDebitKeywords...),
		},
	}
}
