package legacy_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/importer/legacy"
)

const cadastro = `Relatório de produtos;Emitido em 02/03/2026
Loja;MERCEARIA CENTRAL

Código;Descrição;Unidade;Preço Venda;Grupo;Situação
001;Café expresso;UN;4,50;Bebidas;A
002;Pão de queijo;UN;R$ 6,00;Lanches;A
003;Refrigerante lata;UN;1.234,56;bebidas;I
;Total de itens;3;;;
`

func TestParser_Cadastro(t *testing.T) {
	p := legacy.NewParser()

	got, err := p.Parse(strings.NewReader(cadastro))
	require.NoError(t, err)

	want := []catalog.Listing{
		{Product: catalog.Product{Code: "001", Name: "CAFÉ EXPRESSO", Price: 450, Active: true}, Category: "BEBIDAS"},
		{Product: catalog.Product{Code: "002", Name: "PÃO DE QUEIJO", Price: 600, Active: true}, Category: "LANCHES"},
		{Product: catalog.Product{Code: "003", Name: "REFRIGERANTE LATA", Price: 123456, Active: false}, Category: "BEBIDAS"},
	}

	assert.Equal(t, want, got)
}

func TestParser_ProdutosWithoutStatus(t *testing.T) {
	csv := `Código;Descrição;Preço Venda;Grupo
10;Água mineral;3,00;Bebidas
`

	got, err := legacy.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.True(t, got[0].Active)
	assert.Equal(t, "BEBIDAS", got[0].Category)
	assert.Equal(t, int64(300), got[0].Price)
}

func TestParser_TabelaDePrecos(t *testing.T) {
	csv := `Cod ;Produto ;Preço ;
7;Bala;0,25;
7;Bala;0,30;
8;Chiclete;1.50;
`

	got, err := legacy.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "7", got[0].Code)
	assert.Equal(t, int64(30), got[0].Price, "a repeated code keeps the last price")
	assert.Empty(t, got[0].Category)
	assert.Equal(t, int64(150), got[1].Price)
}

func TestParser_Encodings(t *testing.T) {
	latin1, err := charmap.Windows1252.NewEncoder().String(cadastro)
	require.NoError(t, err)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(cadastro)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "windows-1252", input: []byte(latin1)},
		{name: "utf-16le with bom", input: []byte(utf16)},
		{name: "utf-8 with bom", input: append([]byte{0xEF, 0xBB, 0xBF}, cadastro...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := legacy.NewParser().Parse(bytes.NewReader(tt.input))
			require.NoError(t, err)
			require.Len(t, got, 3)

			assert.Equal(t, "CAFÉ EXPRESSO", got[0].Name)
			assert.Equal(t, "PÃO DE QUEIJO", got[1].Name)
		})
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "unknown layout",
			input:   "Data;Valor\n01/01/2026;10,00\n",
			wantErr: "no matching catalog layout",
		},
		{
			name:    "missing description",
			input:   "Cod;Produto;Preço\n1;;2,00\n",
			wantErr: "row 2: missing description",
		},
		{
			name:    "bad price",
			input:   "Cod;Produto;Preço\n1;BALA;abc\n",
			wantErr: "row 2",
		},
		{
			name:    "negative price",
			input:   "Cod;Produto;Preço\n1;BALA;-1,00\n",
			wantErr: "row 2: negative price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := legacy.NewParser().Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_HeadersIgnoreCaseAndAccents(t *testing.T) {
	input := "CODIGO;DESCRICAO;PRECO  VENDA;grupo\n010;Suco de laranja;7,00;Bebidas\n"

	got, err := legacy.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	want := []catalog.Listing{
		{Product: catalog.Product{Code: "010", Name: "SUCO DE LARANJA", Price: 700, Active: true}, Category: "BEBIDAS"},
	}

	assert.Equal(t, want, got)
}

func TestParser_NoLayout(t *testing.T) {
	_, err := legacy.NewParser().Parse(strings.NewReader(""))
	require.ErrorIs(t, err, legacy.ErrNoLayout)
}
