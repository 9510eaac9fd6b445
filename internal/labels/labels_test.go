package labels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoad_DictFormSortsKeysNumerically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.json")
	writeFile(t, path, `{"10":"Caterpie","1":"Ivysaur","0":"Bulbasaur","2":"Venusaur","9":"Blastoise"}`)

	table, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bulbasaur", "Ivysaur", "Venusaur", "Blastoise", "Caterpie"}, table)
}

func TestLoad_DictFormStripsSurroundingQuotes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.json")
	writeFile(t, path, `{"0":"\"Pikachu\"","1":"Eevee"}`)

	table, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pikachu", "Eevee"}, table)
}

func TestLoad_ListFormKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.json")
	writeFile(t, path, `["Pikachu","Charmander","Bulbasaur"]`)

	table, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pikachu", "Charmander", "Bulbasaur"}, table)
}

func TestLoad_RejectsOtherJSONShapes(t *testing.T) {
	for name, contents := range map[string]string{
		"BareString":  `"Pikachu"`,
		"BareNumber":  `42`,
		"EmptyFile":   ``,
		"InvalidJSON": `{"0": `,
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "labels.json")
			writeFile(t, path, contents)

			_, err := Load(path, "")
			assert.Error(t, err)
		})
	}
}

func TestLoad_RejectsNonNumericDictKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.json")
	writeFile(t, path, `{"zero":"Bulbasaur"}`)

	_, err := Load(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a class index")
}

func TestLoad_RejectsNonStringLabelValues(t *testing.T) {
	for name, contents := range map[string]string{
		"DictNumberValue": `{"0":"Pikachu","1":25}`,
		"DictNullValue":   `{"0":null}`,
		"ListNumberEntry": `["Pikachu",25]`,
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "labels.json")
			writeFile(t, path, contents)

			_, err := Load(path, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not a string")
		})
	}
}

func TestLoad_DerivesFromImageDirsAndPersists(t *testing.T) {
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	for _, name := range []string{"Pikachu", "Abra", "Bulbasaur"} {
		require.NoError(t, os.MkdirAll(filepath.Join(imagesDir, name), 0o755))
	}
	writeFile(t, filepath.Join(imagesDir, "notes.txt"), "not a class")

	// parent directory of the labels file does not exist yet
	labelsPath := filepath.Join(dir, "model", "labels.json")

	table, err := Load(labelsPath, imagesDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Abra", "Bulbasaur", "Pikachu"}, table)

	// the derived table must have been written back for later runs
	reloaded, err := Load(labelsPath, "")
	require.NoError(t, err)
	assert.Equal(t, table, reloaded)
}

func TestLoad_ErrorWhenBothSourcesMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "labels.json"), filepath.Join(dir, "images"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
