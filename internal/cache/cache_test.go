package cache

import (
	"sync"
	"testing"
)

func TestCache(t *testing.T) {
	t.Run("AddAndGet", func(t *testing.T) {
		c := New()

		if c.Contains(ColorSelectList) {
			t.Error("new cache should be empty")
		}

		c.AddOrReplaceItem(ColorSelectList, []string{"Red", "Blue"})

		if !c.Contains(ColorSelectList) {
			t.Error("cache should contain the stored key")
		}

		item, ok := c.GetItem(ColorSelectList)
		if !ok {
			t.Fatal("stored item should be retrievable")
		}
		if names, ok := item.([]string); !ok || len(names) != 2 {
			t.Errorf("expected 2 names, got %v", item)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		c := New()
		c.AddOrReplaceItem(SerialSelectList, 1)
		c.AddOrReplaceItem(SerialSelectList, 2)

		item, ok := c.GetItem(SerialSelectList)
		if !ok || item.(int) != 2 {
			t.Errorf("expected replaced value 2, got %v", item)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c := New()
		c.AddOrReplaceItem(ColorSelectList, "x")
		c.DeleteItem(ColorSelectList)

		if c.Contains(ColorSelectList) {
			t.Error("deleted key should be absent")
		}

		// deleting an absent key is a no-op
		c.DeleteItem(ColorSelectList)
	})

	t.Run("ItemAs", func(t *testing.T) {
		c := New()
		c.AddOrReplaceItem(ColorSelectList, []int{1, 2, 3})

		values, ok := ItemAs[[]int](c, ColorSelectList)
		if !ok || len(values) != 3 {
			t.Errorf("expected typed slice of 3, got %v ok=%v", values, ok)
		}

		if _, ok := ItemAs[string](c, ColorSelectList); ok {
			t.Error("mismatched type assertion should report not ok")
		}

		if _, ok := ItemAs[[]int](c, SerialSelectList); ok {
			t.Error("absent key should report not ok")
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		c := New()
		var wg sync.WaitGroup

		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				c.AddOrReplaceItem(ColorSelectList, n)
				c.GetItem(ColorSelectList)
				c.Contains(SerialSelectList)
			}(i)
		}
		wg.Wait()

		if !c.Contains(ColorSelectList) {
			t.Error("key should survive concurrent writes")
		}
	})
}

func TestKeyString(t *testing.T) {
	if ColorSelectList.String() != "ColorSelectList" {
		t.Errorf("unexpected key name %s", ColorSelectList.String())
	}
	if SerialSelectList.String() != "SerialSelectList" {
		t.Errorf("unexpected key name %s", SerialSelectList.String())
	}
}
