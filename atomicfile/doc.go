/*
Package atomicfile writes files so that readers never observe a partial write.

Data goes to a temporary file in the destination directory which is synced and
then renamed over the destination. If Write() or Close() fails the temporary
file is removed and the destination keeps its previous content.

	func save(path string, data []byte) error {
		w, err := atomicfile.New(path)
		if err != nil {
			return err
		}
		// calling Close() twice is a no-op
		defer w.Close()

		if _, err = w.Write(data); err != nil {
			return err
		}
		return w.Close()
	}

The common case is available as WriteFile(path, data, perm).
*/
package atomicfile
