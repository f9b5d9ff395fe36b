package validation

import (
	"strings"
	"time"

	"github.com/archlens/archlens/pkg/spanmodel"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validSpan() *spanmodel.Span {
	start := time.Now()
	return &spanmodel.Span{
		TenantID:    "tenant-a",
		TraceID:     "0123456789abcdef0123456789abcdef",
		SpanID:      "0123456789abcdef",
		ServiceName: "checkout-api",
		Operation:   "POST /cart",
		Kind:        spanmodel.KindServer,
		StartTime:   start,
		EndTime:     start.Add(50 * time.Millisecond),
		LatencyMs:   50,
	}
}

var _ = Describe("Validation", func() {
	Describe("ValidateStringInput", func() {
		Context("with valid input", func() {
			It("should pass validation", func() {
				err := ValidateStringInput("field", "validinput123", 100)
				Expect(err).NotTo(HaveOccurred())
			})
		})

		Context("when input is too long", func() {
			It("should return validation error", func() {
				err := ValidateStringInput("field", "toolong", 5)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be 5 characters or less"))
			})
		})

		Context("when input contains SQL injection patterns", func() {
			It("should detect UNION attacks", func() {
				err := ValidateStringInput("field", "'; UNION SELECT * FROM users --", 100)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("contains potentially unsafe characters"))
			})

			It("should detect script injection", func() {
				err := ValidateStringInput("field", "<script>alert('xss')</script>", 100)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("contains potentially unsafe characters"))
			})

			It("should detect SQL comments", func() {
				err := ValidateStringInput("field", "input-- comment", 100)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("contains potentially unsafe characters"))
			})
		})

		Context("when input contains control characters", func() {
			It("should detect control characters", func() {
				controlChar := string(rune(0x01))
				err := ValidateStringInput("field", "input"+controlChar, 100)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("contains invalid control characters"))
			})

			It("should allow valid whitespace", func() {
				err := ValidateStringInput("field", "input\twith\nlines\r", 100)
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})

	Describe("ValidateSpan", func() {
		Context("with a well-formed span", func() {
			It("should pass validation", func() {
				Expect(ValidateSpan(validSpan())).To(Succeed())
			})
		})

		Context("when tenant_id is unsafe", func() {
			It("should reject it", func() {
				s := validSpan()
				s.TenantID = "tenant'; DROP TABLE spans; --"
				err := ValidateSpan(s)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("contains potentially unsafe characters"))
			})
		})

		Context("when kind is not one of server, client, internal", func() {
			It("should reject it", func() {
				s := validSpan()
				s.Kind = spanmodel.Kind("worker")
				err := ValidateSpan(s)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("kind must be one of server, client, internal"))
			})
		})

		Context("when end_time precedes start_time", func() {
			It("should reject it", func() {
				s := validSpan()
				s.EndTime = s.StartTime.Add(-1 * time.Second)
				err := ValidateSpan(s)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("end_time must not precede start_time"))
			})
		})

		Context("when latency_ms is negative", func() {
			It("should reject it", func() {
				s := validSpan()
				s.LatencyMs = -1
				err := ValidateSpan(s)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("latency_ms must be non-negative"))
			})
		})

		Context("when downstream is unsafe", func() {
			It("should reject it", func() {
				s := validSpan()
				s.Downstream = "<script>alert(1)</script>"
				err := ValidateSpan(s)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("contains potentially unsafe characters"))
			})
		})
	})

	Describe("ValidatePayloadSize", func() {
		It("accepts a payload within the limit", func() {
			Expect(ValidatePayloadSize(make([]byte, 1024))).To(Succeed())
		})

		It("rejects a payload over the limit", func() {
			err := ValidatePayloadSize(make([]byte, MaxSpanPayloadBytes+1))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("exceeds the 65536 byte limit"))
		})
	})

	Describe("ValidateTimeRange", func() {
		Context("with valid time ranges", func() {
			validRanges := []string{"1h", "24h", "7d", "30d", "60m"}

			for _, timeRange := range validRanges {
				timeRange := timeRange
				It("should accept "+timeRange, func() {
					err := ValidateTimeRange(timeRange)
					Expect(err).NotTo(HaveOccurred())
				})
			}
		})

		Context("with invalid time ranges", func() {
			It("should reject invalid format", func() {
				err := ValidateTimeRange("invalid")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be in format like"))
			})

			It("should reject SQL injection attempts", func() {
				err := ValidateTimeRange("1h';DROP")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("contains potentially unsafe characters"))
			})
		})
	})

	Describe("ValidateWindowMinutes", func() {
		Context("with valid window minutes", func() {
			It("should accept valid ranges", func() {
				validWindows := []int{1, 60, 120, 1440, 10080}

				for _, window := range validWindows {
					err := ValidateWindowMinutes(window)
					Expect(err).NotTo(HaveOccurred())
				}
			})
		})

		Context("with invalid window minutes", func() {
			It("should reject zero", func() {
				err := ValidateWindowMinutes(0)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be greater than 0"))
			})

			It("should reject negative values", func() {
				err := ValidateWindowMinutes(-1)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be greater than 0"))
			})

			It("should reject too large values", func() {
				err := ValidateWindowMinutes(20000)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be 7 days (10080 minutes) or less"))
			})
		})
	})

	Describe("ValidateLimit", func() {
		Context("with valid limits", func() {
			It("should accept valid ranges", func() {
				validLimits := []int{1, 50, 100, 1000, 10000}

				for _, limit := range validLimits {
					err := ValidateLimit(limit)
					Expect(err).NotTo(HaveOccurred())
				}
			})
		})

		Context("with invalid limits", func() {
			It("should reject zero", func() {
				err := ValidateLimit(0)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be greater than 0"))
			})

			It("should reject negative values", func() {
				err := ValidateLimit(-1)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be greater than 0"))
			})

			It("should reject too large values", func() {
				err := ValidateLimit(50000)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be 10000 or less"))
			})
		})
	})

	Describe("SanitizeForLogging", func() {
		Context("with clean input", func() {
			It("should return input unchanged", func() {
				input := "clean input text"
				result := SanitizeForLogging(input)
				Expect(result).To(Equal(input))
			})
		})

		Context("with control characters", func() {
			It("should replace control characters", func() {
				controlChar := string(rune(0x01))
				input := "text" + controlChar + "more"
				result := SanitizeForLogging(input)
				Expect(result).To(Equal("text?more"))
			})

			It("should preserve valid whitespace", func() {
				input := "text\twith\nlines\r"
				result := SanitizeForLogging(input)
				Expect(result).To(Equal(input))
			})
		})

		Context("with long input", func() {
			It("should truncate long strings", func() {
				longInput := strings.Repeat("a", 300)

				result := SanitizeForLogging(longInput)
				Expect(len(result)).To(Equal(200))
				Expect(result).To(HaveSuffix("..."))
			})
		})
	})
})
