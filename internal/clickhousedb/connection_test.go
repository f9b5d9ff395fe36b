package clickhousedb

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ClickHouse Configuration", func() {
	Describe("DefaultConfig", func() {
		It("should return correct default values", func() {
			config := DefaultConfig()

			Expect(config.Addr).To(Equal("localhost:9000"))
			Expect(config.Database).To(Equal("archlens"))
			Expect(config.User).To(Equal("default"))
			Expect(config.DialTimeout).To(Equal(5 * time.Second))
			Expect(config.MaxOpenConns).To(Equal(20))
			Expect(config.MaxIdleConns).To(Equal(10))
			Expect(config.ConnMaxLifetime).To(Equal(time.Hour))
		})
	})

	Describe("LoadFromEnv", func() {
		var config *Config

		BeforeEach(func() {
			config = DefaultConfig()
			os.Clearenv()
		})

		AfterEach(func() {
			os.Clearenv()
		})

		It("overlays values from the environment", func() {
			os.Setenv("CLICKHOUSE_ADDR", "ch-1:9000")
			os.Setenv("CLICKHOUSE_DATABASE", "archlens_test")
			os.Setenv("CLICKHOUSE_USER", "ingest")
			os.Setenv("CLICKHOUSE_PASSWORD", "secret")
			os.Setenv("CLICKHOUSE_MAX_OPEN_CONNS", "50")

			config.LoadFromEnv()

			Expect(config.Addr).To(Equal("ch-1:9000"))
			Expect(config.Database).To(Equal("archlens_test"))
			Expect(config.User).To(Equal("ingest"))
			Expect(config.Password).To(Equal("secret"))
			Expect(config.MaxOpenConns).To(Equal(50))
		})

		It("keeps defaults when the max-open-conns override is malformed", func() {
			os.Setenv("CLICKHOUSE_MAX_OPEN_CONNS", "not-a-number")
			originalMax := config.MaxOpenConns
			config.LoadFromEnv()
			Expect(config.MaxOpenConns).To(Equal(originalMax))
		})

		It("leaves config untouched when nothing is set", func() {
			before := *config
			config.LoadFromEnv()
			Expect(*config).To(Equal(before))
		})
	})

	Describe("Validate", func() {
		var config *Config

		BeforeEach(func() {
			config = DefaultConfig()
		})

		It("passes validation for the defaults", func() {
			Expect(config.Validate()).To(Succeed())
		})

		It("rejects an empty address", func() {
			config.Addr = ""
			err := config.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("clickhouse address is required"))
		})

		It("rejects an empty database", func() {
			config.Database = ""
			err := config.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("clickhouse database is required"))
		})

		It("rejects zero max open connections", func() {
			config.MaxOpenConns = 0
			err := config.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("max open connections must be greater than 0"))
		})

		It("rejects negative max idle connections", func() {
			config.MaxIdleConns = -1
			err := config.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("max idle connections must be non-negative"))
		})
	})

	Describe("Open", func() {
		It("rejects an invalid configuration before dialing", func() {
			config := DefaultConfig()
			config.Addr = ""
			_, err := Open(config)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("clickhouse address is required"))
		})
	})
})
