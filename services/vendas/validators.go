package main

import (
	"strings"
	"unicode"
)

// Validações de campos de cadastro. São os mesmos critérios usados
// pelos formulários da atlética desde a primeira versão do sistema.

// NormalizarMatricula remove espaços ao redor da matrícula. Os
// cadastros normalizam antes de validar e persistir, para que a busca
// por matrícula encontre exatamente o que foi gravado.
func NormalizarMatricula(matricula string) string {
	return strings.TrimSpace(matricula)
}

// ValidarMatricula aceita apenas dígitos, entre 6 e 20 caracteres.
func ValidarMatricula(matricula string) bool {
	if len(matricula) < 6 || len(matricula) > 20 {
		return false
	}
	for _, c := range matricula {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ValidarNome aceita apenas letras e espaços, mínimo de 3 caracteres.
func ValidarNome(nome string) bool {
	if len([]rune(nome)) < 3 {
		return false
	}
	for _, c := range nome {
		if !unicode.IsLetter(c) && !unicode.IsSpace(c) {
			return false
		}
	}
	return true
}

// ValidarEmail exige '@', um '.' depois do '@' e mínimo de 5 caracteres.
func ValidarEmail(email string) bool {
	if len(email) < 5 {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

// NormalizarTelefone remove tudo que não for dígito.
func NormalizarTelefone(telefone string) string {
	var b strings.Builder
	for _, c := range telefone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ValidarTelefone aceita formatos como (XX) XXXXX-XXXX: 10 ou 11
// dígitos depois de remover a pontuação.
func ValidarTelefone(telefone string) bool {
	n := len(NormalizarTelefone(telefone))
	return n >= 10 && n <= 11
}

// ValidarTime aceita nomes de time com 2 a 50 caracteres: letras,
// espaços, dígitos, hífen e apóstrofo.
func ValidarTime(time string) bool {
	if len(strings.TrimSpace(time)) < 2 || len([]rune(time)) > 50 {
		return false
	}
	for _, c := range time {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && !unicode.IsSpace(c) && c != '-' && c != '\'' {
			return false
		}
	}
	return true
}

// ValidarCidade aceita 2 a 50 caracteres (letras, espaços e hífens),
// com pelo menos uma letra.
func ValidarCidade(cidade string) bool {
	if len(strings.TrimSpace(cidade)) < 2 || len([]rune(cidade)) > 50 {
		return false
	}
	temLetra := false
	for _, c := range cidade {
		switch {
		case unicode.IsLetter(c):
			temLetra = true
		case unicode.IsSpace(c) || c == '-':
		default:
			return false
		}
	}
	return temLetra
}

// ValidarNomeProduto aceita 2 a 100 caracteres, não só espaços.
func ValidarNomeProduto(nome string) bool {
	n := len([]rune(nome))
	return n >= 2 && n <= 100 && strings.TrimSpace(nome) != ""
}

// ValidarQuantidadeEstoque aceita zero ou mais (cadastro de produto).
func ValidarQuantidadeEstoque(quantidade int) bool {
	return quantidade >= 0
}

// ValidarQuantidadeItem aceita apenas inteiros positivos (item de venda).
func ValidarQuantidadeItem(quantidade int) bool {
	return quantidade > 0
}
