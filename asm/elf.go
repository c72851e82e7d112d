package asm

import (
	"debug/elf"

	"github.com/deepnoodle-ai/hexraw/errors"
)

// ExtractSection returns the contents of the named section of the ELF file
// at path.
func ExtractSection(path, name string) ([]byte, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.Tooling, err, "failed to open elf file")
	}
	defer f.Close()

	section := f.Section(name)
	if section == nil {
		return nil, errors.Toolingf("failed to find %s in elf file", name)
	}
	if section.Type == elf.SHT_NOBITS {
		return make([]byte, section.Size), nil
	}
	data, err := section.Data()
	if err != nil {
		return nil, errors.Wrap(errors.Tooling, err, "failed to read %s from elf file", name)
	}
	return data, nil
}
