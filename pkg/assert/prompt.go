/* Copyright (C) 2019, 2020, 2021, 2022, 2023, 2024, 2025 Dnote contributors
 *
 * This file is part of QRepair.
 *
 * QRepair is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * QRepair is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with QRepair.  If not, see <https://www.gnu.org/licenses/>.
 */

package assert

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// WaitForPrompt reads r until the expected prompt appears, or fails after the
// timeout. Prompts do not end with a newline so r is read byte by byte.
func WaitForPrompt(r io.Reader, expectedPrompt string, timeout time.Duration) error {
	type result struct {
		found bool
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		reader := bufio.NewReaderSize(r, 16)
		var seen strings.Builder

		for {
			b, err := reader.ReadByte()
			if err != nil {
				resultCh <- result{err: err}
				return
			}

			seen.WriteByte(b)
			if strings.HasSuffix(seen.String(), expectedPrompt) {
				resultCh <- result{found: true}
				return
			}
		}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil && res.err != io.EOF {
			return errors.Wrap(res.err, "reading output")
		}
		if !res.found {
			return errors.Errorf("expected prompt '%s' not found in output", expectedPrompt)
		}
		return nil
	case <-time.After(timeout):
		return errors.Errorf("timeout waiting for prompt '%s'", expectedPrompt)
	}
}

// RespondToPrompt waits for a prompt on r and writes the answer to w
func RespondToPrompt(r io.Reader, w io.Writer, expectedPrompt, answer string, timeout time.Duration) error {
	if err := WaitForPrompt(r, expectedPrompt, timeout); err != nil {
		return err
	}

	if _, err := io.WriteString(w, answer); err != nil {
		return errors.Wrap(err, "writing answer")
	}

	return nil
}
